package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/promotion"
)

// CouponRepository defines the persistence contract for coupons.
type CouponRepository interface {
	// GetByCode looks a coupon up by its normalized code.
	// Returns errs.ObjectNotFoundError for unknown codes.
	GetByCode(ctx context.Context, code string) (*promotion.Coupon, error)

	// Consume atomically decrements remainingUses if the coupon is active and
	// has uses left, and records usage. Returns promotion.ErrCouponInvalid when
	// the compare-and-decrement matched nothing.
	//
	// Example:
	//
	//	usage, _ := promotion.NewCouponUsage(coupon.ID(), userID, orderID, now)
	//	if err := uow.CouponRepository().Consume(ctx, usage); err != nil {
	//	    return err // rolls back the whole checkout
	//	}
	Consume(ctx context.Context, usage promotion.CouponUsage) error
}

// OfferRepository defines the persistence contract for offers.
type OfferRepository interface {
	// ListActiveAt returns offers with isActive set whose window contains now.
	ListActiveAt(ctx context.Context, now time.Time) ([]*promotion.Offer, error)

	// DeactivateExpired clears isActive on offers whose endDate is before now
	// and returns how many were changed.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}
