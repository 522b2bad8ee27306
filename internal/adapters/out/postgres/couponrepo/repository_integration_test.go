package couponrepo_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"orderflow/internal/adapters/out/postgres/couponrepo"
	"orderflow/internal/adapters/out/postgres/pgtest"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/promotion"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

type CouponRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *couponrepo.GormCouponRepository
}

func (suite *CouponRepositoryIntegrationTestSuite) SetupSuite() {
	container, db, err := pgtest.Start(context.Background())
	suite.container = container
	suite.Require().NoError(err)
	suite.db = db
}

func (suite *CouponRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(pgtest.Truncate).Error)
	suite.repository = couponrepo.NewGormCouponRepository(suite.db)
}

func (suite *CouponRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *CouponRepositoryIntegrationTestSuite) TestGetByCode_IsCaseInsensitive() {
	ctx := context.Background()
	coupon := suite.addCoupon("Welcome", 5, 5, true)

	got, err := suite.repository.GetByCode(ctx, "  welcome ")

	suite.Require().NoError(err)
	suite.True(got.ID().IsEqual(coupon.ID()))
	suite.Equal("WELCOME", got.Code())
	suite.Equal(promotion.DiscountPercent, got.DiscountType())
	suite.True(got.DiscountValue().Equal(decimal.NewFromInt(15)))
	suite.Equal(5, got.RemainingUses())
	suite.True(got.IsActive())
}

func (suite *CouponRepositoryIntegrationTestSuite) TestGetByCode_KeepsInactiveFlag() {
	suite.addCoupon("OFF", 5, 5, false)

	got, err := suite.repository.GetByCode(context.Background(), "OFF")

	suite.Require().NoError(err)
	suite.False(got.IsActive())
	suite.Require().ErrorIs(got.CheckApplicable(), promotion.ErrCouponInvalid)
}

func (suite *CouponRepositoryIntegrationTestSuite) TestGetByCode_Unknown() {
	got, err := suite.repository.GetByCode(context.Background(), "NOPE")

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	suite.Nil(got)
}

func (suite *CouponRepositoryIntegrationTestSuite) TestConsume_DecrementsAndRecordsUsage() {
	ctx := context.Background()
	coupon := suite.addCoupon("TWICE", 2, 2, true)

	suite.Require().NoError(suite.repository.Consume(ctx, suite.usage(coupon)))
	suite.Require().NoError(suite.repository.Consume(ctx, suite.usage(coupon)))
	err := suite.repository.Consume(ctx, suite.usage(coupon))

	suite.Require().ErrorIs(err, promotion.ErrCouponInvalid)
	got, err := suite.repository.GetByCode(ctx, "TWICE")
	suite.Require().NoError(err)
	suite.Equal(0, got.RemainingUses())
	suite.Equal(int64(2), suite.usageCount())
}

func (suite *CouponRepositoryIntegrationTestSuite) TestConsume_InactiveCoupon() {
	coupon := suite.addCoupon("PAUSED", 3, 3, false)

	err := suite.repository.Consume(context.Background(), suite.usage(coupon))

	suite.Require().ErrorIs(err, promotion.ErrCouponInvalid)
	suite.Equal(int64(0), suite.usageCount())
}

func (suite *CouponRepositoryIntegrationTestSuite) TestConsume_SameOrderTwice() {
	ctx := context.Background()
	coupon := suite.addCoupon("ONCE", 3, 3, true)
	usage := suite.usage(coupon)

	suite.Require().NoError(suite.repository.Consume(ctx, usage))

	err := suite.db.Transaction(func(tx *gorm.DB) error {
		return couponrepo.NewGormCouponRepository(tx).Consume(ctx, usage)
	})

	suite.Require().ErrorIs(err, promotion.ErrCouponInvalid)
	got, err := suite.repository.GetByCode(ctx, "ONCE")
	suite.Require().NoError(err)
	suite.Equal(2, got.RemainingUses(), "the rolled back attempt must not keep its decrement")
}

// TestConsume_LastUseRace runs several checkouts against a coupon with one
// use left; exactly one may win.
func (suite *CouponRepositoryIntegrationTestSuite) TestConsume_LastUseRace() {
	ctx := context.Background()
	coupon := suite.addCoupon("LAST", 10, 1, true)

	const workers = 8
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for range workers {
		usage := suite.usage(coupon)
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- suite.db.Transaction(func(tx *gorm.DB) error {
				return couponrepo.NewGormCouponRepository(tx).Consume(ctx, usage)
			})
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, promotion.ErrCouponInvalid):
			rejected++
		default:
			suite.Failf("unexpected error", "%v", err)
		}
	}

	suite.Equal(1, succeeded)
	suite.Equal(workers-1, rejected)
	got, err := suite.repository.GetByCode(ctx, "LAST")
	suite.Require().NoError(err)
	suite.Equal(0, got.RemainingUses())
	suite.Equal(int64(1), suite.usageCount())
}

func (suite *CouponRepositoryIntegrationTestSuite) addCoupon(code string, maxUses, remaining int, active bool) *promotion.Coupon {
	coupon, err := promotion.RestoreCoupon(kernel.NewUUID(), code, promotion.DiscountPercent,
		decimal.NewFromInt(15), maxUses, remaining, active)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(context.Background(), coupon))
	return coupon
}

func (suite *CouponRepositoryIntegrationTestSuite) usage(coupon *promotion.Coupon) promotion.CouponUsage {
	usage, err := promotion.NewCouponUsage(coupon.ID(), kernel.NewUUID(), kernel.NewUUID(), time.Now())
	suite.Require().NoError(err)
	return usage
}

func (suite *CouponRepositoryIntegrationTestSuite) usageCount() int64 {
	var n int64
	suite.Require().NoError(suite.db.Model(&couponrepo.CouponUsageDTO{}).Count(&n).Error)
	return n
}

func TestCouponRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(CouponRepositoryIntegrationTestSuite))
}
