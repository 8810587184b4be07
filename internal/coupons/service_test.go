package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-backend/pkg/db/dbtest"
	"storefront-backend/pkg/db/models"
	"storefront-backend/pkg/enums"
)

func seedCoupon(t *testing.T, db *gorm.DB, coupon *models.Coupon) *models.Coupon {
	t.Helper()
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	if coupon.ValidFrom.IsZero() {
		coupon.ValidFrom = time.Now().Add(-time.Hour)
	}
	if coupon.ValidTo.IsZero() {
		coupon.ValidTo = time.Now().Add(time.Hour)
	}
	if coupon.Status == "" {
		coupon.Status = enums.CouponStatusActive
	}
	require.NoError(t, db.Create(coupon).Error)
	return coupon
}

func TestValidatePercentageCappedByMaxDiscount(t *testing.T) {
	db := dbtest.Open(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	maxDiscount := decimal.NewFromInt(50)
	seedCoupon(t, db, &models.Coupon{
		Code:          "SAVE10",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		MaxDiscount:   &maxDiscount,
	})

	// 10% of 600 is 60, capped at 50
	quote, err := svc.Validate(ctx, "SAVE10", decimal.NewFromInt(600))
	require.NoError(t, err)
	require.True(t, quote.Valid)
	assert.True(t, quote.DiscountAmount.Equal(decimal.NewFromInt(50)), "got %s", quote.DiscountAmount)

	// 10% of 300 is 30, under the cap
	quote, err = svc.Validate(ctx, "SAVE10", decimal.NewFromInt(300))
	require.NoError(t, err)
	require.True(t, quote.Valid)
	assert.True(t, quote.DiscountAmount.Equal(decimal.NewFromInt(30)))
}

func TestValidateFixedAppliesVerbatim(t *testing.T) {
	db := dbtest.Open(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	seedCoupon(t, db, &models.Coupon{
		Code:          "FLAT200",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(200),
	})

	// fixed discounts are not clamped to the subtotal
	quote, err := svc.Validate(ctx, "FLAT200", decimal.NewFromInt(150))
	require.NoError(t, err)
	require.True(t, quote.Valid)
	assert.True(t, quote.DiscountAmount.Equal(decimal.NewFromInt(200)))
}

func TestValidateRejections(t *testing.T) {
	db := dbtest.Open(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()
	subtotal := decimal.NewFromInt(100)

	quote, err := svc.Validate(ctx, "MISSING", subtotal)
	require.NoError(t, err)
	assert.False(t, quote.Valid)
	assert.Equal(t, ReasonNotFound, quote.Reason)

	inactive := seedCoupon(t, db, &models.Coupon{
		Code:          "INACTIVE",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(10),
		Status:        enums.CouponStatusInactive,
	})
	_ = inactive
	quote, err = svc.Validate(ctx, "INACTIVE", subtotal)
	require.NoError(t, err)
	assert.False(t, quote.Valid)
	assert.Equal(t, ReasonNotFound, quote.Reason)

	seedCoupon(t, db, &models.Coupon{
		Code:          "EXPIRED",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(10),
		ValidFrom:     time.Now().Add(-48 * time.Hour),
		ValidTo:       time.Now().Add(-24 * time.Hour),
	})
	quote, err = svc.Validate(ctx, "EXPIRED", subtotal)
	require.NoError(t, err)
	assert.False(t, quote.Valid)
	assert.Equal(t, ReasonOutsideWindow, quote.Reason)

	limit := 5
	seedCoupon(t, db, &models.Coupon{
		Code:          "USEDUP",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(10),
		UsageLimit:    &limit,
		UsedCount:     5,
	})
	quote, err = svc.Validate(ctx, "USEDUP", subtotal)
	require.NoError(t, err)
	assert.False(t, quote.Valid)
	assert.Equal(t, ReasonUsageExceeded, quote.Reason)

	seedCoupon(t, db, &models.Coupon{
		Code:           "BIGSPEND",
		DiscountType:   enums.DiscountTypeFixed,
		DiscountValue:  decimal.NewFromInt(10),
		MinOrderAmount: decimal.NewFromInt(500),
	})
	quote, err = svc.Validate(ctx, "BIGSPEND", subtotal)
	require.NoError(t, err)
	assert.False(t, quote.Valid)
	assert.Equal(t, ReasonMinOrder, quote.Reason)
}

func TestValidateDoesNotMutateState(t *testing.T) {
	db := dbtest.Open(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	coupon := seedCoupon(t, db, &models.Coupon{
		Code:          "READONLY",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(25),
	})

	for i := 0; i < 3; i++ {
		quote, err := svc.Validate(ctx, "READONLY", decimal.NewFromInt(100))
		require.NoError(t, err)
		require.True(t, quote.Valid)
	}

	var reloaded models.Coupon
	require.NoError(t, db.Where("id = ?", coupon.ID).First(&reloaded).Error)
	assert.Equal(t, 0, reloaded.UsedCount)
}

func TestIncrementUsageRespectsLimit(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	limit := 2
	coupon := seedCoupon(t, db, &models.Coupon{
		Code:          "TWICE",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(10),
		UsageLimit:    &limit,
	})

	for i := 0; i < 2; i++ {
		ok, err := repo.IncrementUsage(ctx, coupon.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := repo.IncrementUsage(ctx, coupon.ID)
	require.NoError(t, err)
	assert.False(t, ok, "third redemption must be rejected at the cap")

	var reloaded models.Coupon
	require.NoError(t, db.Where("id = ?", coupon.ID).First(&reloaded).Error)
	assert.Equal(t, 2, reloaded.UsedCount)
}

func TestAdminCreateAndUpdate(t *testing.T) {
	db := dbtest.Open(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCouponInput{
		Code:          "welcome15",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(15),
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidTo:       time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "WELCOME15", created.Code)
	assert.Equal(t, enums.CouponStatusActive, created.Status)

	_, err = svc.Create(ctx, CreateCouponInput{
		Code:          "TOOBIG",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(150),
		ValidFrom:     time.Now(),
		ValidTo:       time.Now().Add(time.Hour),
	})
	require.Error(t, err)

	inactive := enums.CouponStatusInactive
	updated, err := svc.Update(ctx, created.ID, UpdateCouponInput{Status: &inactive})
	require.NoError(t, err)
	assert.Equal(t, enums.CouponStatusInactive, updated.Status)

	coupons, total, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, coupons, 1)
}
