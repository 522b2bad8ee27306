package catalogrepo_test

import (
	"context"
	"testing"

	"orderflow/internal/adapters/out/postgres/catalogrepo"
	"orderflow/internal/adapters/out/postgres/pgtest"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

type CatalogIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	catalog   *catalogrepo.GormCatalog

	productID kernel.UUID
	variantID kernel.UUID
	inactive  kernel.UUID
}

func (suite *CatalogIntegrationTestSuite) SetupSuite() {
	container, db, err := pgtest.Start(context.Background())
	suite.container = container
	suite.Require().NoError(err)
	suite.db = db
}

func (suite *CatalogIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(pgtest.Truncate).Error)
	suite.catalog = catalogrepo.NewGormCatalog(suite.db)

	suite.productID = kernel.NewUUID()
	suite.variantID = kernel.NewUUID()
	suite.inactive = kernel.NewUUID()

	suite.Require().NoError(suite.db.Create(&[]catalogrepo.ProductDTO{
		{ID: suite.productID.Bytes(), Name: "Pizza", Price: decimal.RequireFromString("250.00"), IsActive: true},
		{ID: suite.inactive.Bytes(), Name: "Retired", Price: decimal.NewFromInt(10), IsActive: false},
	}).Error)
	suite.Require().NoError(suite.db.Create(&catalogrepo.VariantDTO{
		ID: suite.variantID.Bytes(), ProductID: suite.productID.Bytes(), Name: "Large",
		Price: decimal.RequireFromString("320.50"),
	}).Error)
}

func (suite *CatalogIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *CatalogIntegrationTestSuite) TestUnitPrice_Product() {
	price, err := suite.catalog.UnitPrice(context.Background(), suite.productID, nil)

	suite.Require().NoError(err)
	suite.True(price.Equal(decimal.NewFromInt(250)))
}

func (suite *CatalogIntegrationTestSuite) TestUnitPrice_Variant() {
	price, err := suite.catalog.UnitPrice(context.Background(), suite.productID, &suite.variantID)

	suite.Require().NoError(err)
	suite.Equal("320.5", price.String())
}

func (suite *CatalogIntegrationTestSuite) TestUnitPrice_VariantOfAnotherProduct() {
	_, err := suite.catalog.UnitPrice(context.Background(), suite.inactive, &suite.variantID)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *CatalogIntegrationTestSuite) TestUnitPrice_InactiveProduct() {
	_, err := suite.catalog.UnitPrice(context.Background(), suite.inactive, nil)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *CatalogIntegrationTestSuite) TestUnitPrice_UnknownProduct() {
	_, err := suite.catalog.UnitPrice(context.Background(), kernel.NewUUID(), nil)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func TestCatalogIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogIntegrationTestSuite))
}
