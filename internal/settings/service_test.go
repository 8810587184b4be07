package settings

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/pkg/db/dbtest"
	"storefront-backend/pkg/db/models"
	pkgerrors "storefront-backend/pkg/errors"
)

func TestCheckoutSnapshotReadsConfiguredValues(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, db.Create(&models.Setting{Key: KeyTaxRate, Value: "12.5"}).Error)
	require.NoError(t, db.Create(&models.Setting{Key: KeyFreeShippingThreshold, Value: "300"}).Error)
	require.NoError(t, db.Create(&models.Setting{Key: KeyShippingFee, Value: "75"}).Error)

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	snap, err := svc.CheckoutSnapshot(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, snap.TaxRate.Equal(decimal.RequireFromString("12.5")), "tax rate %s", snap.TaxRate)
	assert.True(t, snap.FreeShippingThreshold.Equal(decimal.NewFromInt(300)))
	assert.True(t, snap.ShippingFee.Equal(decimal.NewFromInt(75)))
}

func TestCheckoutSnapshotFallsBackToDefaults(t *testing.T) {
	db := dbtest.Open(t)
	// tax_rate present but garbage, the others absent
	require.NoError(t, db.Create(&models.Setting{Key: KeyTaxRate, Value: "not-a-number"}).Error)

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	snap, err := svc.CheckoutSnapshot(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, snap.TaxRate.Equal(DefaultTaxRate))
	assert.True(t, snap.FreeShippingThreshold.Equal(DefaultFreeShippingThreshold))
	assert.True(t, snap.ShippingFee.Equal(DefaultShippingFee))
}

func TestSetValidatesNumericKeys(t *testing.T) {
	db := dbtest.Open(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	_, err = svc.Set(context.Background(), KeyShippingFee, "abc")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Set(context.Background(), KeyShippingFee, "-5")
	require.Error(t, err)

	saved, err := svc.Set(context.Background(), KeyShippingFee, "40")
	require.NoError(t, err)
	assert.Equal(t, "40", saved.Value)

	// upsert overwrites
	saved, err = svc.Set(context.Background(), KeyShippingFee, "45")
	require.NoError(t, err)
	assert.Equal(t, "45", saved.Value)

	rows, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "45", rows[0].Value)
}
