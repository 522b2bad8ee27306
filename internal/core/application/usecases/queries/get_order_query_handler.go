package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetOrderQueryHandler reads order views from the orders, order_items and
// order_status_history tables.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle returns errs.ObjectNotFoundError for unknown orders and
// kernel.ErrForbidden when the actor may not see the order.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	db := h.db.WithContext(ctx)
	resp, err := h.readOrder(db, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	if !canRead(query.Actor(), resp.UserID, resp.DeliveryAgentID) {
		return GetOrderQueryResponse{}, fmt.Errorf("%w: order %s", kernel.ErrForbidden, resp.ID)
	}

	if resp.Items, err = h.readItems(db, query.OrderID()); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if resp.StatusHistory, err = h.readHistory(db, query.OrderID()); err != nil {
		return GetOrderQueryResponse{}, err
	}

	return resp, nil
}

func (h GetOrderQueryHandler) readOrder(db *gorm.DB, orderID kernel.UUID) (GetOrderQueryResponse, error) {
	var (
		resp          GetOrderQueryResponse
		id, userID    uuid.UUID
		status        string
		coupon, agent uuid.NullUUID
		createdAt     time.Time
	)

	row := db.Raw(`
		SELECT
			id,
			user_id,
			status,
			subtotal,
			discount_total,
			total,
			coupon_id,
			delivery_agent_id,
			created_at
		FROM orders
		WHERE id = ?
	`, orderID.Bytes()).Row()

	err := row.Scan(&id, &userID, &status, &resp.Subtotal, &resp.DiscountTotal, &resp.Total,
		&coupon, &agent, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return resp, errs.NewObjectNotFoundError("orderID", orderID)
	}
	if err != nil {
		return resp, err
	}

	if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return resp, err
	}
	if resp.UserID, err = kernel.UUIDFromBytes(userID[:]); err != nil {
		return resp, err
	}
	if resp.Status, err = order.ParseStatus(status); err != nil {
		return resp, err
	}
	if resp.CouponID, err = nullableID(coupon); err != nil {
		return resp, err
	}
	if resp.DeliveryAgentID, err = nullableID(agent); err != nil {
		return resp, err
	}
	resp.CreatedAt = createdAt.UTC()

	return resp, nil
}

func (h GetOrderQueryHandler) readItems(db *gorm.DB, orderID kernel.UUID) ([]OrderItemResponse, error) {
	rows, err := db.Raw(`
		SELECT
			product_id,
			variant_id,
			quantity,
			unit_price
		FROM order_items
		WHERE order_id = ?
		ORDER BY position
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]OrderItemResponse, 0)
	for rows.Next() {
		var (
			item      OrderItemResponse
			productID uuid.UUID
			variantID uuid.NullUUID
		)
		if err = rows.Scan(&productID, &variantID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		if item.ProductID, err = kernel.UUIDFromBytes(productID[:]); err != nil {
			return nil, err
		}
		if item.VariantID, err = nullableID(variantID); err != nil {
			return nil, err
		}
		item.LineTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, item)
	}

	return items, rows.Err()
}

func (h GetOrderQueryHandler) readHistory(db *gorm.DB, orderID kernel.UUID) ([]StatusChangeResponse, error) {
	rows, err := db.Raw(`
		SELECT
			status,
			at,
			actor_id
		FROM order_status_history
		WHERE order_id = ?
		ORDER BY seq
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]StatusChangeResponse, 0)
	for rows.Next() {
		var (
			change  StatusChangeResponse
			status  string
			at      time.Time
			actorID uuid.UUID
		)
		if err = rows.Scan(&status, &at, &actorID); err != nil {
			return nil, err
		}
		if change.Status, err = order.ParseStatus(status); err != nil {
			return nil, err
		}
		if change.ActorID, err = kernel.UUIDFromBytes(actorID[:]); err != nil {
			return nil, err
		}
		change.At = at.UTC()
		history = append(history, change)
	}

	return history, rows.Err()
}

func nullableID(id uuid.NullUUID) (*kernel.UUID, error) {
	if !id.Valid {
		return nil, nil
	}
	parsed, err := kernel.UUIDFromBytes(id.UUID[:])
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
