package promotion

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// DiscountType tells how a coupon's discountValue is interpreted.
type DiscountType string

const (
	DiscountFlat    DiscountType = "flat"
	DiscountPercent DiscountType = "percent"
)

func ParseDiscountType(s string) (DiscountType, error) {
	switch t := DiscountType(s); t {
	case DiscountFlat, DiscountPercent:
		return t, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("discountType", fmt.Errorf("%q is not a valid discount type", s))
	}
}

func (t DiscountType) String() string {
	return string(t)
}
