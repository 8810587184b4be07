package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/pkg/db/dbtest"
	"storefront-backend/pkg/db/models"
	"storefront-backend/pkg/enums"
)

func TestDeactivateExpiredBefore(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	expired := seedCoupon(t, db, &models.Coupon{
		Code:          "EXPIRED10",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		ValidFrom:     now.Add(-48 * time.Hour),
		ValidTo:       now.Add(-time.Hour),
	})
	live := seedCoupon(t, db, &models.Coupon{
		Code:          "LIVE10",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		ValidTo:       now.Add(24 * time.Hour),
	})

	n, err := repo.DeactivateExpiredBefore(context.Background(), now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := repo.FindByID(context.Background(), expired.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CouponStatusInactive, got.Status)

	got, err = repo.FindByID(context.Background(), live.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CouponStatusActive, got.Status)
}

func TestDeactivateExhausted(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)

	limit := 5
	exhausted := seedCoupon(t, db, &models.Coupon{
		Code:          "USEDUP",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(5),
		UsageLimit:    &limit,
		UsedCount:     5,
	})
	partial := seedCoupon(t, db, &models.Coupon{
		Code:          "PARTIAL",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(5),
		UsageLimit:    &limit,
		UsedCount:     4,
	})
	unlimited := seedCoupon(t, db, &models.Coupon{
		Code:          "UNLIMITED",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(5),
		UsedCount:     100,
	})

	n, err := repo.DeactivateExhausted(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := repo.FindByID(context.Background(), exhausted.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CouponStatusInactive, got.Status)

	for _, c := range []*models.Coupon{partial, unlimited} {
		got, err := repo.FindByID(context.Background(), c.ID)
		require.NoError(t, err)
		assert.Equal(t, enums.CouponStatusActive, got.Status)
	}
}
