// Package pricing turns requested order lines into priced items and quotes
// them. Checkout and the price preview share it so both always agree.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/promotion"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// Line is an unpriced order line as requested by a consumer.
type Line struct {
	ProductID kernel.UUID
	VariantID *kernel.UUID
	Quantity  int
}

// ValidateLines checks a requested cart before any catalog lookup.
func ValidateLines(lines []Line) error {
	if len(lines) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for i, line := range lines {
		if err := line.ProductID.Validate(); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		if line.VariantID != nil {
			if err := line.VariantID.Validate(); err != nil {
				return fmt.Errorf("items[%d].variantId: %w", i, err)
			}
		}
		if line.Quantity <= 0 {
			return errs.NewValueIsOutOfRangeError(fmt.Sprintf("items[%d].quantity", i), line.Quantity, 1, "unbounded")
		}
	}
	return nil
}

// Quoter resolves catalog prices and applies the pricing engine.
type Quoter struct {
	catalog ports.Catalog
	engine  services.PricingEngine
}

func NewQuoter(catalog ports.Catalog, engine services.PricingEngine) Quoter {
	return Quoter{catalog: catalog, engine: engine}
}

// Items prices every line at the current catalog price.
func (q Quoter) Items(ctx context.Context, lines []Line) ([]order.Item, error) {
	if len(lines) == 0 {
		return nil, errs.NewValueIsRequiredError("items")
	}

	items := make([]order.Item, 0, len(lines))
	for i, line := range lines {
		price, err := q.catalog.UnitPrice(ctx, line.ProductID, line.VariantID)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}

		item, err := order.NewItem(line.ProductID, line.VariantID, line.Quantity, price)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		items = append(items, item)
	}

	return items, nil
}

// Quote computes totals using the offers valid at now.
func (q Quoter) Quote(
	items []order.Item,
	offers []*promotion.Offer,
	coupon *promotion.Coupon,
	now time.Time,
) (order.Totals, error) {
	return q.engine.ComputeOrderTotal(items, promotion.OffersByProduct(offers, now), coupon)
}

// LookupCoupon loads a coupon by code and maps unknown codes to
// promotion.ErrCouponInvalid. An empty code yields no coupon.
func LookupCoupon(ctx context.Context, coupons ports.CouponRepository, code string) (*promotion.Coupon, error) {
	code = promotion.NormalizeCode(code)
	if code == "" {
		return nil, nil
	}

	coupon, err := coupons.GetByCode(ctx, code)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: unknown code %s", promotion.ErrCouponInvalid, code)
	}
	if err != nil {
		return nil, err
	}

	if err = coupon.CheckApplicable(); err != nil {
		return nil, err
	}
	return coupon, nil
}
