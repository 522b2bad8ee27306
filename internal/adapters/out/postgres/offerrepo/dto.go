// Package offerrepo persists offers and the products they discount.
package offerrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/promotion"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OfferDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"index;not null"`
	IsActive  bool      `gorm:"index;not null"`

	Products []OfferProductDTO `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE"`
}

func (OfferDTO) TableName() string {
	return "offers"
}

type OfferProductDTO struct {
	OfferID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ExtraDiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	CustomText           *string
}

func (OfferProductDTO) TableName() string {
	return "offer_products"
}

func fromDomain(o *promotion.Offer) OfferDTO {
	dto := OfferDTO{
		ID:        o.ID().Bytes(),
		Name:      o.Name(),
		StartDate: o.StartDate(),
		EndDate:   o.EndDate(),
		IsActive:  o.IsActive(),
	}
	for _, p := range o.Products() {
		dto.Products = append(dto.Products, OfferProductDTO{
			OfferID:              dto.ID,
			ProductID:            p.ProductID.Bytes(),
			ExtraDiscountPercent: p.ExtraDiscountPercent,
			CustomText:           p.CustomText,
		})
	}
	return dto
}

func toDomain(dto OfferDTO) (*promotion.Offer, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	products := make([]promotion.OfferProduct, 0, len(dto.Products))
	for _, p := range dto.Products {
		productID, idErr := kernel.UUIDFromBytes(p.ProductID[:])
		if idErr != nil {
			return nil, idErr
		}
		products = append(products, promotion.OfferProduct{
			ProductID:            productID,
			ExtraDiscountPercent: p.ExtraDiscountPercent,
			CustomText:           p.CustomText,
		})
	}

	return promotion.NewOffer(id, dto.Name, dto.StartDate.UTC(), dto.EndDate.UTC(), dto.IsActive, products)
}
