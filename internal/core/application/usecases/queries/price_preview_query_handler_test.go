package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/pricing"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/promotion"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCatalog struct{ mock.Mock }

func (m *MockCatalog) UnitPrice(ctx context.Context, productID kernel.UUID, variantID *kernel.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, productID, variantID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockOfferRepository struct{ mock.Mock }

func (m *MockOfferRepository) ListActiveAt(ctx context.Context, now time.Time) ([]*promotion.Offer, error) {
	args := m.Called(ctx, now)
	offers, _ := args.Get(0).([]*promotion.Offer)
	return offers, args.Error(1)
}

func (m *MockOfferRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockCouponRepository struct{ mock.Mock }

func (m *MockCouponRepository) GetByCode(ctx context.Context, code string) (*promotion.Coupon, error) {
	args := m.Called(ctx, code)
	coupon, _ := args.Get(0).(*promotion.Coupon)
	return coupon, args.Error(1)
}

func (m *MockCouponRepository) Consume(ctx context.Context, usage promotion.CouponUsage) error {
	return m.Called(ctx, usage).Error(0)
}

func TestPricePreviewQueryHandler_Handle(t *testing.T) {
	ctx := t.Context()
	product := kernel.NewUUID()
	lines := []pricing.Line{{ProductID: product, Quantity: 5}}

	offer, err := promotion.NewOffer(kernel.NewUUID(), "week", time.Now().Add(-time.Hour), time.Now().Add(time.Hour),
		true, []promotion.OfferProduct{{ProductID: product, ExtraDiscountPercent: decimal.NewFromInt(10)}})
	require.NoError(t, err)

	newHandler := func() (queries.PricePreviewQueryHandler, *MockCatalog, *MockOfferRepository, *MockCouponRepository) {
		catalog := &MockCatalog{}
		offers := &MockOfferRepository{}
		coupons := &MockCouponRepository{}
		quoter := pricing.NewQuoter(catalog, services.NewPricingEngine())
		return queries.NewPricePreviewQueryHandler(quoter, offers, coupons), catalog, offers, coupons
	}

	t.Run("should price with offer and coupon without consuming it", func(t *testing.T) {
		handler, catalog, offers, coupons := newHandler()
		coupon, err := promotion.NewCoupon(kernel.NewUUID(), "SAVE20", promotion.DiscountFlat, decimal.NewFromInt(20), 1)
		require.NoError(t, err)

		catalog.On("UnitPrice", ctx, product, (*kernel.UUID)(nil)).Return(decimal.NewFromInt(100), nil)
		offers.On("ListActiveAt", ctx, mock.AnythingOfType("time.Time")).Return([]*promotion.Offer{offer}, nil)
		coupons.On("GetByCode", ctx, "SAVE20").Return(coupon, nil)

		query, err := queries.NewPricePreviewQuery(lines, "save20")
		require.NoError(t, err)
		totals, err := handler.Handle(ctx, query)

		require.NoError(t, err)
		assert.Equal(t, "500", totals.Subtotal().String())
		assert.Equal(t, "70", totals.DiscountTotal().String())
		assert.Equal(t, "430", totals.Total().String())
		assert.Equal(t, 1, coupon.RemainingUses())
		coupons.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything)
	})

	t.Run("should reject unknown coupon code", func(t *testing.T) {
		handler, catalog, offers, coupons := newHandler()
		catalog.On("UnitPrice", ctx, product, (*kernel.UUID)(nil)).Return(decimal.NewFromInt(100), nil)
		offers.On("ListActiveAt", ctx, mock.Anything).Return(nil, nil)
		coupons.On("GetByCode", ctx, "NOPE").Return(nil, errs.NewObjectNotFoundError("coupon", "NOPE"))

		query, err := queries.NewPricePreviewQuery(lines, "nope")
		require.NoError(t, err)
		_, err = handler.Handle(ctx, query)

		require.ErrorIs(t, err, promotion.ErrCouponInvalid)
	})

	t.Run("should not look up a coupon when none is given", func(t *testing.T) {
		handler, catalog, offers, coupons := newHandler()
		catalog.On("UnitPrice", ctx, product, (*kernel.UUID)(nil)).Return(decimal.NewFromInt(100), nil)
		offers.On("ListActiveAt", ctx, mock.Anything).Return(nil, nil)

		query, err := queries.NewPricePreviewQuery(lines, "")
		require.NoError(t, err)
		totals, err := handler.Handle(ctx, query)

		require.NoError(t, err)
		assert.Equal(t, "500", totals.Total().String())
		coupons.AssertNotCalled(t, "GetByCode", mock.Anything, mock.Anything)
	})

	t.Run("should surface storage errors", func(t *testing.T) {
		handler, catalog, offers, _ := newHandler()
		storageErr := errors.New("connection reset")
		catalog.On("UnitPrice", ctx, product, (*kernel.UUID)(nil)).Return(decimal.NewFromInt(100), nil)
		offers.On("ListActiveAt", ctx, mock.Anything).Return(nil, storageErr)

		query, err := queries.NewPricePreviewQuery(lines, "")
		require.NoError(t, err)
		_, err = handler.Handle(ctx, query)

		require.ErrorIs(t, err, storageErr)
	})

	t.Run("should fail on zero value query", func(t *testing.T) {
		handler, _, _, _ := newHandler()

		_, err := handler.Handle(ctx, queries.PricePreviewQuery{})

		require.ErrorIs(t, err, queries.ErrPricePreviewQueryIsNotConstructed)
	})
}

func TestNewPricePreviewQuery(t *testing.T) {
	t.Run("should reject non-positive quantity", func(t *testing.T) {
		_, err := queries.NewPricePreviewQuery([]pricing.Line{{ProductID: kernel.NewUUID(), Quantity: 0}}, "")

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should reject an empty cart", func(t *testing.T) {
		_, err := queries.NewPricePreviewQuery(nil, "CODE")

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should normalize the coupon code", func(t *testing.T) {
		q, err := queries.NewPricePreviewQuery([]pricing.Line{{ProductID: kernel.NewUUID(), Quantity: 1}}, " save ")

		require.NoError(t, err)
		assert.Equal(t, "SAVE", q.CouponCode())
	})
}

func TestNewGetOrderQuery(t *testing.T) {
	actor, err := kernel.NewActor(kernel.NewUUID(), kernel.RoleConsumer)
	require.NoError(t, err)

	t.Run("should reject zero order id", func(t *testing.T) {
		_, err := queries.NewGetOrderQuery(actor, kernel.UUID{})

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})

	t.Run("should reject an unauthenticated actor", func(t *testing.T) {
		_, err := queries.NewGetOrderQuery(kernel.Actor{}, kernel.NewUUID())

		require.Error(t, err)
	})

	t.Run("zero value query is not constructed", func(t *testing.T) {
		require.ErrorIs(t, queries.GetOrderQuery{}.Validate(), queries.ErrGetOrderQueryIsNotConstructed)
		require.ErrorIs(t, queries.GetActiveOrdersQuery{}.Validate(), queries.ErrGetActiveOrdersQueryIsNotConstructed)
	})
}
