package offerrepo_test

import (
	"context"
	"testing"
	"time"

	"orderflow/internal/adapters/out/postgres/offerrepo"
	"orderflow/internal/adapters/out/postgres/pgtest"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/promotion"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

type OfferRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *offerrepo.GormOfferRepository
	now        time.Time
}

func (suite *OfferRepositoryIntegrationTestSuite) SetupSuite() {
	container, db, err := pgtest.Start(context.Background())
	suite.container = container
	suite.Require().NoError(err)
	suite.db = db
}

func (suite *OfferRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(pgtest.Truncate).Error)
	suite.repository = offerrepo.NewGormOfferRepository(suite.db)
	suite.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func (suite *OfferRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OfferRepositoryIntegrationTestSuite) TestListActiveAt_FiltersWindowAndFlag() {
	ctx := context.Background()
	productID := kernel.NewUUID()
	text := "summer"

	current := suite.addOffer("current", -time.Hour, time.Hour, true,
		promotion.OfferProduct{ProductID: productID, ExtraDiscountPercent: decimal.RequireFromString("12.5"), CustomText: &text})
	suite.addOffer("inactive", -time.Hour, time.Hour, false)
	suite.addOffer("future", time.Hour, 2*time.Hour, true)
	suite.addOffer("expired", -2*time.Hour, -time.Hour, true)
	edge := suite.addOffer("ends now", -time.Hour, 0, true)

	offers, err := suite.repository.ListActiveAt(ctx, suite.now)

	suite.Require().NoError(err)
	suite.Require().Len(offers, 2)
	ids := []kernel.UUID{offers[0].ID(), offers[1].ID()}
	suite.Contains(ids, current.ID())
	suite.Contains(ids, edge.ID())

	for _, o := range offers {
		if !o.ID().IsEqual(current.ID()) {
			continue
		}
		products := o.Products()
		suite.Require().Len(products, 1)
		suite.True(products[0].ProductID.IsEqual(productID))
		suite.Equal("12.5", products[0].ExtraDiscountPercent.String())
		suite.Require().NotNil(products[0].CustomText)
		suite.Equal(text, *products[0].CustomText)
	}
}

func (suite *OfferRepositoryIntegrationTestSuite) TestDeactivateExpired() {
	ctx := context.Background()
	suite.addOffer("expired", -2*time.Hour, -time.Hour, true)
	suite.addOffer("expired and off", -2*time.Hour, -time.Hour, false)
	suite.addOffer("current", -time.Hour, time.Hour, true)

	n, err := suite.repository.DeactivateExpired(ctx, suite.now)
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)

	n, err = suite.repository.DeactivateExpired(ctx, suite.now)
	suite.Require().NoError(err)
	suite.Equal(int64(0), n)

	offers, err := suite.repository.ListActiveAt(ctx, suite.now)
	suite.Require().NoError(err)
	suite.Len(offers, 1)
}

func (suite *OfferRepositoryIntegrationTestSuite) addOffer(
	name string,
	startOffset, endOffset time.Duration,
	active bool,
	products ...promotion.OfferProduct,
) *promotion.Offer {
	o, err := promotion.NewOffer(kernel.NewUUID(), name, suite.now.Add(startOffset), suite.now.Add(endOffset),
		active, products)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(context.Background(), o))
	return o
}

func TestOfferRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OfferRepositoryIntegrationTestSuite))
}
