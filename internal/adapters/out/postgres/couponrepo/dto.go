// Package couponrepo persists coupons and their usage records.
package couponrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/promotion"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CouponDTO struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Code          string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	DiscountType  string          `gorm:"type:varchar(16);not null"`
	DiscountValue decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	MaxUses       int             `gorm:"not null"`
	RemainingUses int             `gorm:"not null;check:remaining_uses >= 0"`
	IsActive      bool            `gorm:"not null"`
}

func (CouponDTO) TableName() string {
	return "coupons"
}

// CouponUsageDTO records who used a coupon on which order. One coupon is
// consumed at most once per order.
type CouponUsageDTO struct {
	CouponID uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;index;not null"`
	UsedAt   time.Time `gorm:"not null"`
}

func (CouponUsageDTO) TableName() string {
	return "coupon_usages"
}

// FromDomain maps a coupon to its row. Exported for seeding.
func FromDomain(c *promotion.Coupon) CouponDTO {
	return CouponDTO{
		ID:            c.ID().Bytes(),
		Code:          c.Code(),
		DiscountType:  c.DiscountType().String(),
		DiscountValue: c.DiscountValue(),
		MaxUses:       c.MaxUses(),
		RemainingUses: c.RemainingUses(),
		IsActive:      c.IsActive(),
	}
}

func toDomain(dto CouponDTO) (*promotion.Coupon, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	discountType, err := promotion.ParseDiscountType(dto.DiscountType)
	if err != nil {
		return nil, err
	}
	return promotion.RestoreCoupon(id, dto.Code, discountType, dto.DiscountValue,
		dto.MaxUses, dto.RemainingUses, dto.IsActive)
}

func usageFromDomain(u promotion.CouponUsage) CouponUsageDTO {
	return CouponUsageDTO{
		CouponID: u.CouponID.Bytes(),
		OrderID:  u.OrderID.Bytes(),
		UserID:   u.UserID.Bytes(),
		UsedAt:   u.UsedAt,
	}
}
