package promotion

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var ErrOfferIsNotConstructed = errors.New("Offer must be created via NewOffer constructor")

var hundred = decimal.NewFromInt(100)

// OfferProduct is the per-product part of an offer.
type OfferProduct struct {
	ProductID            kernel.UUID
	ExtraDiscountPercent decimal.Decimal
	CustomText           *string
}

// Offer is a time-bounded discount applied automatically to the products it
// names, while active and inside [startDate, endDate].
type Offer struct {
	id        kernel.UUID
	name      string
	startDate time.Time
	endDate   time.Time
	isActive  bool
	products  []OfferProduct

	isConstructed bool
}

// NewOffer builds an offer.
//
// Parameters:
//   - id: the offer identifier
//   - name: a non-empty display name
//   - startDate, endDate: the inclusive window, startDate not after endDate
//   - isActive: whether the offer is switched on
//   - products: the discounted products, each percent in [0, 100]
//
// Returns:
//   - *Offer: the offer
//   - error: every field error joined together
func NewOffer(
	id kernel.UUID,
	name string,
	startDate, endDate time.Time,
	isActive bool,
	products []OfferProduct,
) (*Offer, error) {
	o := &Offer{
		isActive:      isActive,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setName(name),
		o.setWindow(startDate, endDate),
		o.setProducts(products),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate returns ErrOfferIsNotConstructed for offers that did not come from
// NewOffer.
func (o *Offer) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOfferIsNotConstructed
	}
	return nil
}

// ID returns the offer identifier.
func (o *Offer) ID() kernel.UUID {
	return o.id
}

func (o *Offer) Name() string {
	return o.name
}

// StartDate is the first instant the offer applies.
func (o *Offer) StartDate() time.Time {
	return o.startDate
}

// EndDate is the last instant the offer applies.
func (o *Offer) EndDate() time.Time {
	return o.endDate
}

func (o *Offer) IsActive() bool {
	return o.isActive
}

// Products returns a copy of the discounted products.
func (o *Offer) Products() []OfferProduct {
	out := make([]OfferProduct, len(o.products))
	copy(out, o.products)
	return out
}

// AppliesAt reports whether the offer is active and now is inside its window.
// Both ends of the window are inclusive.
func (o *Offer) AppliesAt(now time.Time) bool {
	return o.isActive && !now.Before(o.startDate) && !now.After(o.endDate)
}

// IsExpiredAt reports whether the window has ended.
func (o *Offer) IsExpiredAt(now time.Time) bool {
	return now.After(o.endDate)
}

// OffersByProduct reduces the offers applying at now to one extra discount
// percent per product. When several offers name the same product the
// highest percent wins.
func OffersByProduct(offers []*Offer, now time.Time) map[kernel.UUID]decimal.Decimal {
	out := make(map[kernel.UUID]decimal.Decimal)
	for _, offer := range offers {
		if offer == nil || !offer.AppliesAt(now) {
			continue
		}
		for _, p := range offer.products {
			if cur, ok := out[p.ProductID]; !ok || p.ExtraDiscountPercent.GreaterThan(cur) {
				out[p.ProductID] = p.ExtraDiscountPercent
			}
		}
	}
	return out
}

func (o *Offer) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Offer) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	o.name = name
	return nil
}

func (o *Offer) setWindow(start, end time.Time) error {
	if end.Before(start) {
		return errs.NewValueIsInvalidErrorWithCause("endDate", fmt.Errorf("%s is before startDate %s",
			end.Format(time.RFC3339), start.Format(time.RFC3339)))
	}
	o.startDate = start.UTC()
	o.endDate = end.UTC()
	return nil
}

func (o *Offer) setProducts(products []OfferProduct) error {
	for _, p := range products {
		if err := p.ProductID.Validate(); err != nil {
			return err
		}
		if p.ExtraDiscountPercent.IsNegative() || p.ExtraDiscountPercent.GreaterThan(hundred) {
			return errs.NewValueIsOutOfRangeError("extraDiscountPercent", p.ExtraDiscountPercent, 0, 100)
		}
	}
	o.products = make([]OfferProduct, len(products))
	copy(o.products, products)
	return nil
}
