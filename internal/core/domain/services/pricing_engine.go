package services

import (
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/promotion"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PricingEngine is a domain service that computes what a consumer pays for an
// order.
//
// Business rules:
//   - subtotal is the sum of unitPrice * quantity over all items
//   - each item gets the extra discount percent of the offer applying to its
//     product, clamped to [0, 100]
//   - a coupon must be active with remaining uses, otherwise ErrCouponInvalid
//   - the coupon discount is capped at subtotal - offerDiscount, so the total
//     never drops below zero
//
// Example usage:
//
//	engine := services.NewPricingEngine()
//	offers := promotion.OffersByProduct(activeOffers, now)
//
//	totals, err := engine.ComputeOrderTotal(items, offers, coupon)
//	if errors.Is(err, promotion.ErrCouponInvalid) {
//	    // reject checkout with CouponInvalid
//	}
type PricingEngine struct{}

// NewPricingEngine creates a new PricingEngine instance. The engine holds no
// state and the value can be shared freely.
func NewPricingEngine() PricingEngine {
	return PricingEngine{}
}

// ComputeOrderTotal prices items.
//
// Offer discounts are computed per line and rounded to cents before they are
// summed. The coupon discount is computed on the whole subtotal.
//
// Parameters:
//   - items: priced order lines, at least one
//   - offersByProduct: extra discount percent per product id; missing means 0
//   - coupon: optional coupon, nil when none was supplied
//
// Returns:
//   - order.Totals: subtotal, discountTotal and total rounded to cents
//   - error: ErrCouponInvalid for an unusable coupon, or validation errors
//
// Example:
//
//	// 2 x 50.00 with a 10% offer on the product and a flat 200.00 coupon
//	totals, _ := engine.ComputeOrderTotal(items, map[kernel.UUID]decimal.Decimal{shirtID: ten}, coupon)
//	totals.Subtotal()      // 100.00
//	totals.DiscountTotal() // 100.00: 10.00 from the offer, the coupon capped at 90.00
//	totals.Total()         // 0.00
//
// ComputeOrderTotal has no side effects. Consuming a coupon use is left to
// the checkout flow.
func (p PricingEngine) ComputeOrderTotal(
	items []order.Item,
	offersByProduct map[kernel.UUID]decimal.Decimal,
	coupon *promotion.Coupon,
) (order.Totals, error) {
	if len(items) == 0 {
		return order.Totals{}, errs.NewValueIsRequiredError("items")
	}

	subtotal := decimal.Zero
	offerDiscount := decimal.Zero

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return order.Totals{}, err
		}

		line := item.LineTotal()
		subtotal = subtotal.Add(line)

		if percent, ok := offersByProduct[item.ProductID()]; ok {
			offerDiscount = offerDiscount.Add(p.lineDiscount(line, percent))
		}
	}

	couponDiscount := decimal.Zero
	if coupon != nil {
		if err := coupon.CheckApplicable(); err != nil {
			return order.Totals{}, err
		}

		couponDiscount = coupon.Discount(subtotal)
		if remaining := subtotal.Sub(offerDiscount); couponDiscount.GreaterThan(remaining) {
			couponDiscount = remaining
		}
	}

	discountTotal := offerDiscount.Add(couponDiscount)
	if discountTotal.GreaterThan(subtotal) {
		discountTotal = subtotal
	}

	return order.NewTotals(subtotal.Round(2), discountTotal.Round(2))
}

// lineDiscount is line * percent / 100 with percent clamped to [0, 100],
// rounded half away from zero to cents.
func (p PricingEngine) lineDiscount(line, percent decimal.Decimal) decimal.Decimal {
	switch {
	case percent.IsNegative():
		percent = decimal.Zero
	case percent.GreaterThan(hundred):
		percent = hundred
	}
	return line.Mul(percent).Div(hundred).Round(2)
}
