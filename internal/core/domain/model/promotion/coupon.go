package promotion

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	// ErrCouponInvalid covers unknown, inactive and exhausted coupons.
	ErrCouponInvalid = errors.New("coupon invalid")

	ErrCouponIsNotConstructed = errors.New("Coupon must be created via NewCoupon constructor")
)

// Coupon is a code-activated discount with a limited number of uses.
//
// Invariants:
//   - 0 <= remainingUses <= maxUses
//   - percent coupons carry a discountValue in [0, 100]
//
// Coupons have no validity window; only isActive and remainingUses decide
// whether one can be applied.
type Coupon struct {
	id            kernel.UUID
	code          string
	discountType  DiscountType
	discountValue decimal.Decimal
	maxUses       int
	remainingUses int
	isActive      bool

	isConstructed bool
}

// NewCoupon creates an active coupon with all uses remaining. The code is
// stored upper-cased so lookups are case-insensitive.
func NewCoupon(
	id kernel.UUID,
	code string,
	discountType DiscountType,
	discountValue decimal.Decimal,
	maxUses int,
) (*Coupon, error) {
	return RestoreCoupon(id, code, discountType, discountValue, maxUses, maxUses, true)
}

// RestoreCoupon rebuilds a coupon from storage.
//
// Parameters:
//   - id: the coupon identifier
//   - code: the redeemable code, normalized with NormalizeCode
//   - discountType: DiscountFlat or DiscountPercent
//   - discountValue: an amount for flat coupons, a percent in [0, 100] otherwise
//   - maxUses, remainingUses: 0 <= remainingUses <= maxUses
//   - isActive: whether the coupon can be applied at all
//
// Returns:
//   - *Coupon: the restored coupon
//   - error: every field error joined together
func RestoreCoupon(
	id kernel.UUID,
	code string,
	discountType DiscountType,
	discountValue decimal.Decimal,
	maxUses int,
	remainingUses int,
	isActive bool,
) (*Coupon, error) {
	c := &Coupon{
		isActive:      isActive,
		isConstructed: true,
	}

	if err := errors.Join(
		c.setID(id),
		c.setCode(code),
		c.setDiscount(discountType, discountValue),
		c.setUses(maxUses, remainingUses),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// NormalizeCode is the canonical form of a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate returns ErrCouponIsNotConstructed for coupons that did not come
// from NewCoupon or RestoreCoupon.
func (c *Coupon) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrCouponIsNotConstructed
	}
	return nil
}

// ID returns the coupon identifier.
func (c *Coupon) ID() kernel.UUID {
	return c.id
}

// Code returns the upper-cased code.
func (c *Coupon) Code() string {
	return c.code
}

// DiscountType tells how DiscountValue is applied.
func (c *Coupon) DiscountType() DiscountType {
	return c.discountType
}

// DiscountValue is an amount for flat coupons and a percent for percent
// coupons.
func (c *Coupon) DiscountValue() decimal.Decimal {
	return c.discountValue
}

// MaxUses is the number of uses the coupon was issued with.
func (c *Coupon) MaxUses() int {
	return c.maxUses
}

// RemainingUses is the number of uses left. It only goes down.
func (c *Coupon) RemainingUses() int {
	return c.remainingUses
}

// IsActive reports whether the coupon was switched on by an admin. Use
// CheckApplicable to also account for remaining uses.
func (c *Coupon) IsActive() bool {
	return c.isActive
}

// CheckApplicable returns ErrCouponInvalid for inactive or exhausted coupons.
func (c *Coupon) CheckApplicable() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.isActive {
		return fmt.Errorf("%w: %s is not active", ErrCouponInvalid, c.code)
	}
	if c.remainingUses <= 0 {
		return fmt.Errorf("%w: %s has no remaining uses", ErrCouponInvalid, c.code)
	}
	return nil
}

// Discount is the raw coupon discount for subtotal, before any capping
// against other discounts.
func (c *Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if c.discountType == DiscountFlat {
		return c.discountValue
	}
	return subtotal.Mul(c.discountValue).Div(decimal.NewFromInt(100)).Round(2)
}

// Consume takes one use in memory. Storage adapters must perform the same
// step as an atomic compare-and-decrement.
//
// Returns:
//   - nil after the use was taken
//   - ErrCouponInvalid when the coupon is inactive or has no uses left
//
// Example:
//
//	if err := coupon.Consume(); err != nil {
//	    return nil, err // promotion.ErrCouponInvalid
//	}
//	err = uow.CouponRepository().Consume(ctx, usage)
func (c *Coupon) Consume() error {
	if err := c.CheckApplicable(); err != nil {
		return err
	}
	c.remainingUses--
	return nil
}

func (c *Coupon) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Coupon) setCode(code string) error {
	code = NormalizeCode(code)
	if code == "" {
		return errs.NewValueIsRequiredError("code")
	}
	c.code = code
	return nil
}

func (c *Coupon) setDiscount(t DiscountType, value decimal.Decimal) error {
	if _, err := ParseDiscountType(string(t)); err != nil {
		return err
	}
	if value.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("discountValue", fmt.Errorf("%s is negative", value))
	}
	if t == DiscountPercent && value.GreaterThan(decimal.NewFromInt(100)) {
		return errs.NewValueIsOutOfRangeError("discountValue", value, 0, 100)
	}
	c.discountType = t
	c.discountValue = value
	return nil
}

func (c *Coupon) setUses(maxUses, remainingUses int) error {
	if maxUses < 0 {
		return errs.NewValueIsInvalidErrorWithCause("maxUses", fmt.Errorf("%d is negative", maxUses))
	}
	if remainingUses < 0 || remainingUses > maxUses {
		return errs.NewValueIsOutOfRangeError("remainingUses", remainingUses, 0, maxUses)
	}
	c.maxUses = maxUses
	c.remainingUses = remainingUses
	return nil
}
