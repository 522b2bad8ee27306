package commands

import (
	"context"
	"time"

	"orderflow/internal/core/application/usecases/pricing"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/promotion"
)

// PlaceOrderCommandHandler runs checkout.
//
// The order insert and the coupon consumption share one transaction. The
// coupon is decremented with a compare-and-decrement in storage, so when two
// checkouts race for the last use one of them gets promotion.ErrCouponInvalid
// and its order is rolled back.
type PlaceOrderCommandHandler struct {
	uowFactory CheckoutUoWFactory
	quoter     pricing.Quoter
	now        func() time.Time
}

func NewPlaceOrderCommandHandler(uowFactory CheckoutUoWFactory, quoter pricing.Quoter) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{
		uowFactory: uowFactory,
		quoter:     quoter,
		now:        time.Now,
	}
}

// Handle prices the lines, stores the pending order and consumes the coupon.
func (h *PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	items, err := h.quoter.Items(ctx, cmd.Lines())
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.now()

	offers, err := uow.OfferRepository().ListActiveAt(ctx, now)
	if err != nil {
		return nil, err
	}

	coupon, err := pricing.LookupCoupon(ctx, uow.CouponRepository(), cmd.CouponCode())
	if err != nil {
		return nil, err
	}

	totals, err := h.quoter.Quote(items, offers, coupon, now)
	if err != nil {
		return nil, err
	}

	var couponID *kernel.UUID
	if coupon != nil {
		id := coupon.ID()
		couponID = &id
	}

	placed, err := order.NewOrder(cmd.OrderID(), cmd.Actor().UserID, items, totals, couponID, now)
	if err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Add(ctx, placed); err != nil {
		return nil, err
	}

	if coupon != nil {
		if err = coupon.Consume(); err != nil {
			return nil, err
		}
		usage, usageErr := promotion.NewCouponUsage(coupon.ID(), cmd.Actor().UserID, placed.ID(), now)
		if usageErr != nil {
			return nil, usageErr
		}
		if err = uow.CouponRepository().Consume(ctx, usage); err != nil {
			return nil, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return placed, nil
}
