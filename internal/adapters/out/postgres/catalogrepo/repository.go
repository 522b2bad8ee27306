// Package catalogrepo reads prices from the catalog tables. The catalog is
// owned by the product service; this adapter never writes to it outside of
// tests.
package catalogrepo

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductDTO struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name     string          `gorm:"type:varchar(255);not null"`
	Price    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	IsActive bool            `gorm:"not null"`
}

func (ProductDTO) TableName() string {
	return "products"
}

type VariantDTO struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name      string          `gorm:"type:varchar(255);not null"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (VariantDTO) TableName() string {
	return "product_variants"
}

// GormCatalog implements ports.Catalog.
type GormCatalog struct {
	db *gorm.DB
}

func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

// UnitPrice returns the variant price when variantID is set, otherwise the
// product price. Inactive products cannot be ordered.
func (c *GormCatalog) UnitPrice(ctx context.Context, productID kernel.UUID, variantID *kernel.UUID) (decimal.Decimal, error) {
	query := c.db.WithContext(ctx).Model(&ProductDTO{}).
		Select("products.price AS price").
		Where("products.id = ? AND products.is_active", productID.Bytes())
	if variantID != nil {
		query = c.db.WithContext(ctx).Model(&VariantDTO{}).
			Select("product_variants.price AS price").
			Joins("JOIN products ON products.id = product_variants.product_id").
			Where("product_variants.id = ? AND product_variants.product_id = ? AND products.is_active",
				variantID.Bytes(), productID.Bytes())
	}

	var row priceRow
	result := query.Limit(1).Scan(&row)
	if result.Error != nil {
		return decimal.Zero, result.Error
	}
	if result.RowsAffected == 0 {
		return decimal.Zero, errs.NewObjectNotFoundError("productID", productID.String())
	}
	return row.Price, nil
}

type priceRow struct {
	Price decimal.Decimal
}
