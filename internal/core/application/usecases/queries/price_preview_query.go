package queries

import (
	"errors"

	"orderflow/internal/core/application/usecases/pricing"
	"orderflow/internal/core/domain/model/promotion"
	"orderflow/internal/pkg/guard"
)

var ErrPricePreviewQueryIsNotConstructed = errors.New(
	"PricePreviewQuery must be created via NewPricePreviewQuery constructor",
)

// PricePreviewQuery prices a cart exactly like checkout would, without
// creating an order or consuming the coupon.
type PricePreviewQuery struct { //nolint:recvcheck //using for validation
	lines      []pricing.Line
	couponCode string
	guard      guard.ConstructorGuard
}

func NewPricePreviewQuery(lines []pricing.Line, couponCode string) (PricePreviewQuery, error) {
	if err := pricing.ValidateLines(lines); err != nil {
		return PricePreviewQuery{}, err
	}

	q := PricePreviewQuery{
		lines:      make([]pricing.Line, len(lines)),
		couponCode: promotion.NormalizeCode(couponCode),
		guard:      guard.NewConstructorGuard(),
	}
	copy(q.lines, lines)

	return q, nil
}

func (q PricePreviewQuery) Validate() error {
	return q.guard.Validate(ErrPricePreviewQueryIsNotConstructed)
}

func (q PricePreviewQuery) Lines() []pricing.Line {
	out := make([]pricing.Line, len(q.lines))
	copy(out, q.lines)
	return out
}

func (q PricePreviewQuery) CouponCode() string {
	return q.couponCode
}
