package promotion

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

// CouponUsage records one consumed coupon use. It is written in the same
// transaction as the remainingUses decrement.
type CouponUsage struct {
	CouponID kernel.UUID
	UserID   kernel.UUID
	OrderID  kernel.UUID
	UsedAt   time.Time
}

func NewCouponUsage(couponID, userID, orderID kernel.UUID, usedAt time.Time) (CouponUsage, error) {
	if err := errors.Join(couponID.Validate(), userID.Validate(), orderID.Validate()); err != nil {
		return CouponUsage{}, err
	}
	return CouponUsage{
		CouponID: couponID,
		UserID:   userID,
		OrderID:  orderID,
		UsedAt:   usedAt.UTC(),
	}, nil
}
