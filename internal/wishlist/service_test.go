package wishlist

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-backend/internal/catalog"
	"storefront-backend/pkg/db/dbtest"
	"storefront-backend/pkg/db/models"
	pkgerrors "storefront-backend/pkg/errors"
)

func setupWishlist(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	catalogSvc, err := catalog.NewService(catalog.NewRepository(db))
	require.NoError(t, err)
	svc, err := NewService(NewRepository(db), catalogSvc)
	require.NoError(t, err)
	return svc, db
}

func TestAddListRemove(t *testing.T) {
	svc, db := setupWishlist(t)
	ctx := context.Background()
	userID := uuid.New()

	product := &models.Product{
		ID:       uuid.New(),
		Name:     "Headphones",
		Slug:     "headphones",
		Price:    decimal.NewFromInt(199),
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)

	first, err := svc.Add(ctx, userID, product.ID)
	require.NoError(t, err)

	// idempotent add
	second, err := svc.Add(ctx, userID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	items, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, svc.Remove(ctx, userID, product.ID))
	err = svc.Remove(ctx, userID, product.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestAddUnknownProduct(t *testing.T) {
	svc, _ := setupWishlist(t)

	_, err := svc.Add(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
