package offerrepo

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/promotion"

	"gorm.io/gorm"
)

// GormOfferRepository implements ports.OfferRepository using GORM.
type GormOfferRepository struct {
	db *gorm.DB
}

func NewGormOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: db}
}

// Add stores an offer with its products. Used by seeding and tests.
func (r *GormOfferRepository) Add(ctx context.Context, o *promotion.Offer) error {
	if err := o.Validate(); err != nil {
		return err
	}
	dto := fromDomain(o)
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormOfferRepository) ListActiveAt(ctx context.Context, now time.Time) ([]*promotion.Offer, error) {
	var dtos []OfferDTO
	err := r.db.WithContext(ctx).
		Preload("Products").
		Where("is_active AND start_date <= ? AND end_date >= ?", now, now).
		Order("start_date").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	offers := make([]*promotion.Offer, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, nil
}

func (r *GormOfferRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&OfferDTO{}).
		Where("is_active AND end_date < ?", now).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
