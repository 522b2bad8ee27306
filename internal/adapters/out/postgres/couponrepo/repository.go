package couponrepo

import (
	"context"
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/promotion"
	"orderflow/internal/pkg/errs"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GormCouponRepository implements ports.CouponRepository using GORM.
type GormCouponRepository struct {
	db *gorm.DB
}

func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// Add stores a new coupon. Used by seeding and tests.
func (r *GormCouponRepository) Add(ctx context.Context, c *promotion.Coupon) error {
	if err := c.Validate(); err != nil {
		return err
	}
	dto := FromDomain(c)
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormCouponRepository) GetByCode(ctx context.Context, code string) (*promotion.Coupon, error) {
	code = promotion.NormalizeCode(code)

	var dto CouponDTO
	if err := r.db.WithContext(ctx).First(&dto, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("coupon", code)
		}
		return nil, err
	}

	return toDomain(dto)
}

// Consume decrements remaining_uses only while the coupon is active and has
// uses left, then records the usage. The single conditional UPDATE is the
// compare-and-decrement: concurrent checkouts racing for the last use are
// serialized by the row lock and the loser matches zero rows.
func (r *GormCouponRepository) Consume(ctx context.Context, usage promotion.CouponUsage) error {
	db := r.db.WithContext(ctx)

	result := db.Model(&CouponDTO{}).
		Where("id = ? AND is_active AND remaining_uses > 0", usage.CouponID.Bytes()).
		UpdateColumn("remaining_uses", gorm.Expr("remaining_uses - 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: no uses left", promotion.ErrCouponInvalid)
	}

	dto := usageFromDomain(usage)
	if err := db.Create(&dto).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: already applied to order %s", promotion.ErrCouponInvalid, usage.OrderID)
		}
		return err
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
