package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/pkg/db/dbtest"
	pkgerrors "storefront-backend/pkg/errors"
)

func TestProductLifecycle(t *testing.T) {
	db := dbtest.Open(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CategoryInput{Name: "Snacks", Slug: "snacks", IsActive: true})
	require.NoError(t, err)

	product, err := svc.CreateProduct(ctx, CreateProductInput{
		CategoryID:    &category.ID,
		Name:          "Trail Mix",
		Slug:          "trail-mix",
		Price:         decimal.RequireFromString("9.99"),
		StockQuantity: 25,
		Tags:          []string{"nuts", "snack"},
		IsActive:      true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, product.ID)

	loaded, err := svc.GetProductBySlug(ctx, "trail-mix")
	require.NoError(t, err)
	assert.True(t, loaded.Price.Equal(decimal.RequireFromString("9.99")))
	assert.Equal(t, 25, loaded.StockQuantity)

	newPrice := decimal.RequireFromString("11.50")
	updated, err := svc.UpdateProduct(ctx, product.ID, UpdateProductInput{Price: &newPrice})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(newPrice))

	require.NoError(t, svc.DeactivateProduct(ctx, product.ID))
	reloaded, err := svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
}

func TestGetProductNotFound(t *testing.T) {
	db := dbtest.Open(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	_, err = svc.GetProduct(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCreateProductRejectsInvalidInput(t *testing.T) {
	db := dbtest.Open(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.CreateProduct(ctx, CreateProductInput{Slug: "x", Price: decimal.NewFromInt(1)})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.CreateProduct(ctx, CreateProductInput{
		Name:  "Bad Price",
		Slug:  "bad-price",
		Price: decimal.NewFromInt(-1),
	})
	require.Error(t, err)

	missingCat := uuid.New()
	_, err = svc.CreateProduct(ctx, CreateProductInput{
		Name:       "Orphan",
		Slug:       "orphan",
		Price:      decimal.NewFromInt(5),
		CategoryID: &missingCat,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
