package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-backend/pkg/db/dbtest"
	"storefront-backend/pkg/db/models"
)

func seedProduct(t *testing.T, db *gorm.DB, slug string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:            uuid.New(),
		Name:          "Product " + slug,
		Slug:          slug,
		Price:         decimal.NewFromInt(100),
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestDecrementStockGuardsAgainstOverselling(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "guarded", 5)

	ok, err := repo.DecrementStock(ctx, product.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	// only 2 left, a request for 3 must not touch the row
	ok, err = repo.DecrementStock(ctx, product.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	reloaded, err := repo.FindProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.StockQuantity)

	require.NoError(t, repo.RestoreStock(ctx, product.ID, 3))
	reloaded, err = repo.FindProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.StockQuantity)
}

func TestDecrementStockExactlyToZero(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "exact", 4)

	ok, err := repo.DecrementStock(ctx, product.ID, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	reloaded, err := repo.FindProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.StockQuantity)

	ok, err = repo.DecrementStock(ctx, product.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListProductsFiltersAndPaginates(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := &models.Category{ID: uuid.New(), Name: "Tea", Slug: "tea", IsActive: true}
	require.NoError(t, db.Create(category).Error)

	inCat := seedProduct(t, db, "green-tea", 10)
	require.NoError(t, db.Model(inCat).Update("category_id", category.ID).Error)
	seedProduct(t, db, "coffee", 10)

	inactive := seedProduct(t, db, "discontinued", 0)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	products, total, err := repo.ListProducts(ctx, ProductFilter{ActiveOnly: true, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, products, 2)

	products, total, err = repo.ListProducts(ctx, ProductFilter{CategorySlug: "tea", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "green-tea", products[0].Slug)

	products, _, err = repo.ListProducts(ctx, ProductFilter{Search: "coff", Limit: 10})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "coffee", products[0].Slug)
}
