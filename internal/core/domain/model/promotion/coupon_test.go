package promotion_test

import (
	"testing"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/promotion"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoupon(t *testing.T) {
	t.Run("should normalize code and start with all uses", func(t *testing.T) {
		c, err := promotion.NewCoupon(kernel.NewUUID(), " save50 ", promotion.DiscountFlat, decimal.NewFromInt(50), 10)

		require.NoError(t, err)
		assert.Equal(t, "SAVE50", c.Code())
		assert.Equal(t, 10, c.RemainingUses())
		assert.True(t, c.IsActive())
	})

	t.Run("should reject percent above 100", func(t *testing.T) {
		_, err := promotion.NewCoupon(kernel.NewUUID(), "BIG", promotion.DiscountPercent, decimal.NewFromInt(101), 1)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should reject unknown discount type", func(t *testing.T) {
		_, err := promotion.NewCoupon(kernel.NewUUID(), "X", promotion.DiscountType("bogo"), decimal.NewFromInt(1), 1)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject remaining uses above max", func(t *testing.T) {
		_, err := promotion.RestoreCoupon(kernel.NewUUID(), "X", promotion.DiscountFlat, decimal.NewFromInt(1), 1, 2, true)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should require a code", func(t *testing.T) {
		_, err := promotion.NewCoupon(kernel.NewUUID(), "   ", promotion.DiscountFlat, decimal.NewFromInt(1), 1)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestCoupon_CheckApplicable(t *testing.T) {
	testCases := []struct {
		name      string
		remaining int
		active    bool
		wantErr   bool
	}{
		{"active with uses", 1, true, false},
		{"exhausted", 0, true, true},
		{"inactive", 5, false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := promotion.RestoreCoupon(kernel.NewUUID(), "CODE", promotion.DiscountFlat,
				decimal.NewFromInt(5), 5, tc.remaining, tc.active)
			require.NoError(t, err)

			err = c.CheckApplicable()

			if tc.wantErr {
				require.ErrorIs(t, err, promotion.ErrCouponInvalid)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCoupon_Consume(t *testing.T) {
	c, err := promotion.NewCoupon(kernel.NewUUID(), "ONCE", promotion.DiscountFlat, decimal.NewFromInt(5), 1)
	require.NoError(t, err)

	require.NoError(t, c.Consume())
	assert.Equal(t, 0, c.RemainingUses())

	require.ErrorIs(t, c.Consume(), promotion.ErrCouponInvalid)
	assert.Equal(t, 0, c.RemainingUses())
}

func TestCoupon_Discount(t *testing.T) {
	flat, err := promotion.NewCoupon(kernel.NewUUID(), "FLAT", promotion.DiscountFlat, decimal.NewFromInt(50), 1)
	require.NoError(t, err)
	percent, err := promotion.NewCoupon(kernel.NewUUID(), "TEN", promotion.DiscountPercent, decimal.NewFromInt(10), 1)
	require.NoError(t, err)

	assert.True(t, flat.Discount(decimal.NewFromInt(500)).Equal(decimal.NewFromInt(50)))
	assert.True(t, percent.Discount(decimal.NewFromInt(500)).Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "3.33", percent.Discount(decimal.RequireFromString("33.33")).StringFixed(2))
}

func TestNewCouponUsage(t *testing.T) {
	_, err := promotion.NewCouponUsage(kernel.NewUUID(), kernel.UUID{}, kernel.NewUUID(), time.Now())

	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}
