package pushtokenrepo

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/notification"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPushTokenRepository implements ports.PushTokenRepository using GORM.
type GormPushTokenRepository struct {
	db *gorm.DB
}

func NewGormPushTokenRepository(db *gorm.DB) *GormPushTokenRepository {
	return &GormPushTokenRepository{db: db}
}

// Upsert inserts the token or moves an existing one to its new owner.
func (r *GormPushTokenRepository) Upsert(ctx context.Context, token notification.PushToken) error {
	if err := token.Validate(); err != nil {
		return err
	}

	dto := fromDomain(token, time.Now().UTC())
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "device_id", "updated_at"}),
		}).
		Create(&dto).Error
}

func (r *GormPushTokenRepository) ListByUser(ctx context.Context, userID kernel.UUID) ([]notification.PushToken, error) {
	var dtos []PushTokenDTO
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID.Bytes()).
		Order("updated_at DESC").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	tokens := make([]notification.PushToken, 0, len(dtos))
	for _, dto := range dtos {
		t, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

func (r *GormPushTokenRepository) Delete(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&PushTokenDTO{}).Error
}

func (r *GormPushTokenRepository) DeleteForUser(ctx context.Context, userID kernel.UUID, token string) error {
	result := r.db.WithContext(ctx).
		Where("token = ? AND user_id = ?", token, userID.Bytes()).
		Delete(&PushTokenDTO{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("token", token)
	}
	return nil
}
