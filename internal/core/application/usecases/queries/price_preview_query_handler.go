package queries

import (
	"context"
	"time"

	"orderflow/internal/core/application/usecases/pricing"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// PricePreviewQueryHandler runs the checkout pricing read-only.
type PricePreviewQueryHandler struct {
	quoter  pricing.Quoter
	offers  ports.OfferRepository
	coupons ports.CouponRepository
	now     func() time.Time
}

func NewPricePreviewQueryHandler(
	quoter pricing.Quoter,
	offers ports.OfferRepository,
	coupons ports.CouponRepository,
) PricePreviewQueryHandler {
	return PricePreviewQueryHandler{
		quoter:  quoter,
		offers:  offers,
		coupons: coupons,
		now:     time.Now,
	}
}

// Handle returns promotion.ErrCouponInvalid for unknown, inactive or
// exhausted codes.
func (h PricePreviewQueryHandler) Handle(ctx context.Context, query PricePreviewQuery) (order.Totals, error) {
	if err := query.Validate(); err != nil {
		return order.Totals{}, err
	}

	items, err := h.quoter.Items(ctx, query.Lines())
	if err != nil {
		return order.Totals{}, err
	}

	now := h.now()
	offers, err := h.offers.ListActiveAt(ctx, now)
	if err != nil {
		return order.Totals{}, err
	}

	coupon, err := pricing.LookupCoupon(ctx, h.coupons, query.CouponCode())
	if err != nil {
		return order.Totals{}, err
	}

	return h.quoter.Quote(items, offers, coupon, now)
}
