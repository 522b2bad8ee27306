// Package orderrepo maps order aggregates to the orders, order_items and
// order_status_history tables.
package orderrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the orders row. Items and History are loaded with Preload and
// created together with the row.
type OrderDTO struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	Status          string          `gorm:"type:varchar(32);index;not null"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DiscountTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CouponID        *uuid.UUID      `gorm:"type:uuid"`
	DeliveryAgentID *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt       time.Time       `gorm:"not null"`
	Version         int             `gorm:"not null;default:0"`

	Items   []OrderItemDTO    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History []StatusChangeDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO is one order line; Position keeps the original order.
type OrderItemDTO struct {
	OrderID   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Position  int             `gorm:"primaryKey"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	VariantID *uuid.UUID      `gorm:"type:uuid"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

// StatusChangeDTO is one history entry. Seq is the index in the history, so
// re-inserting an entry that already exists is a conflict on the key.
type StatusChangeDTO struct {
	OrderID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq     int       `gorm:"primaryKey"`
	Status  string    `gorm:"type:varchar(32);not null"`
	At      time.Time `gorm:"not null"`
	ActorID uuid.UUID `gorm:"type:uuid;not null"`
}

func (StatusChangeDTO) TableName() string {
	return "order_status_history"
}

func fromDomain(o *order.Order) OrderDTO {
	id := o.ID().Bytes()

	dto := OrderDTO{
		ID:              id,
		UserID:          o.UserID().Bytes(),
		Status:          o.Status().String(),
		Subtotal:        o.Totals().Subtotal(),
		DiscountTotal:   o.Totals().DiscountTotal(),
		Total:           o.Totals().Total(),
		CouponID:        optionalID(o.CouponID()),
		DeliveryAgentID: optionalID(o.DeliveryAgentID()),
		CreatedAt:       o.CreatedAt(),
		Version:         o.Version(),
	}

	for i, item := range o.Items() {
		dto.Items = append(dto.Items, OrderItemDTO{
			OrderID:   id,
			Position:  i,
			ProductID: item.ProductID().Bytes(),
			VariantID: optionalID(item.VariantID()),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice(),
		})
	}

	dto.History = historyFromDomain(id, o.StatusHistory())
	return dto
}

func historyFromDomain(orderID uuid.UUID, history []order.StatusChange) []StatusChangeDTO {
	out := make([]StatusChangeDTO, 0, len(history))
	for i, change := range history {
		out = append(out, StatusChangeDTO{
			OrderID: orderID,
			Seq:     i,
			Status:  change.Status.String(),
			At:      change.At,
			ActorID: change.ActorID.Bytes(),
		})
	}
	return out
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	userID, err := kernel.UUIDFromBytes(dto.UserID[:])
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	couponID, err := domainID(dto.CouponID)
	if err != nil {
		return nil, err
	}
	agentID, err := domainID(dto.DeliveryAgentID)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		productID, idErr := kernel.UUIDFromBytes(itemDTO.ProductID[:])
		if idErr != nil {
			return nil, idErr
		}
		variantID, idErr := domainID(itemDTO.VariantID)
		if idErr != nil {
			return nil, idErr
		}
		item, itemErr := order.NewItem(productID, variantID, itemDTO.Quantity, itemDTO.UnitPrice)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	totals, err := order.NewTotals(dto.Subtotal, dto.DiscountTotal)
	if err != nil {
		return nil, err
	}

	history := make([]order.StatusChange, 0, len(dto.History))
	for _, h := range dto.History {
		s, parseErr := order.ParseStatus(h.Status)
		if parseErr != nil {
			return nil, parseErr
		}
		actorID, idErr := kernel.UUIDFromBytes(h.ActorID[:])
		if idErr != nil {
			return nil, idErr
		}
		history = append(history, order.StatusChange{Status: s, At: h.At.UTC(), ActorID: actorID})
	}

	return order.RestoreOrder(id, userID, status, items, totals, couponID, agentID,
		dto.CreatedAt, history, dto.Version)
}

func optionalID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func domainID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
