package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// Catalog resolves current prices from the product catalog.
type Catalog interface {
	// UnitPrice returns the price of the variant, or of the product when
	// variantID is nil. Returns errs.ObjectNotFoundError for unknown ids.
	UnitPrice(ctx context.Context, productID kernel.UUID, variantID *kernel.UUID) (decimal.Decimal, error)
}
