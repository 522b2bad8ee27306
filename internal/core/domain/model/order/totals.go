package order

import (
	"errors"
	"fmt"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrTotalsIsNotConstructed = errors.New("Totals must be created via NewTotals constructor")

// Totals is the priced outcome of an order.
//
// Invariants:
//   - total = subtotal - discountTotal
//   - 0 <= discountTotal <= subtotal, hence total >= 0
type Totals struct { //nolint:recvcheck //using for validation
	subtotal      decimal.Decimal
	discountTotal decimal.Decimal
	total         decimal.Decimal
	guard         guard.ConstructorGuard
}

// NewTotals derives total from subtotal and discountTotal.
func NewTotals(subtotal, discountTotal decimal.Decimal) (Totals, error) {
	if subtotal.IsNegative() {
		return Totals{}, errs.NewValueIsInvalidErrorWithCause("subtotal", fmt.Errorf("%s is negative", subtotal))
	}
	if discountTotal.IsNegative() || discountTotal.GreaterThan(subtotal) {
		return Totals{}, errs.NewValueIsOutOfRangeError("discountTotal", discountTotal, decimal.Zero, subtotal)
	}

	return Totals{
		subtotal:      subtotal,
		discountTotal: discountTotal,
		total:         subtotal.Sub(discountTotal),
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (t Totals) Validate() error {
	return t.guard.Validate(ErrTotalsIsNotConstructed)
}

func (t Totals) Subtotal() decimal.Decimal {
	return t.subtotal
}

func (t Totals) DiscountTotal() decimal.Decimal {
	return t.discountTotal
}

func (t Totals) Total() decimal.Decimal {
	return t.total
}
