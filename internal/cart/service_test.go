package cart

import (
	"context"
	"testing"
	"time"

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

func setupCartService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	catalogSvc, err := catalog.NewService(catalog.NewRepository(db))
	require.NoError(t, err)
	svc, err := NewService(NewRepository(db), catalogSvc)
	require.NoError(t, err)
	return svc, db
}

func seedCartProduct(t *testing.T, db *gorm.DB, slug string, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:            uuid.New(),
		Name:          "Product " + slug,
		Slug:          slug,
		Price:         decimal.RequireFromString(price),
		StockQuantity: 100,
		IsActive:      true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestAddItemCapturesPriceSnapshot(t *testing.T) {
	svc, db := setupCartService(t)
	ctx := context.Background()
	owner := UserOwner(uuid.New())

	product := seedCartProduct(t, db, "kettle", "120.00")

	view, err := svc.AddItem(ctx, owner, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.True(t, view.Subtotal.Equal(decimal.RequireFromString("240.00")))

	// price change after add must not affect the captured line
	require.NoError(t, db.Model(product).Update("price", decimal.RequireFromString("150.00")).Error)

	view, err = svc.AddItem(ctx, owner, product.ID, 1)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 3, view.Lines[0].Quantity)
	assert.True(t, view.Lines[0].UnitPrice.Equal(decimal.RequireFromString("120.00")))
	assert.True(t, view.Subtotal.Equal(decimal.RequireFromString("360.00")))
}

func TestAddItemRejectsInactiveProductAndBadQuantity(t *testing.T) {
	svc, db := setupCartService(t)
	ctx := context.Background()
	owner := GuestOwner("guest-1")

	product := seedCartProduct(t, db, "lamp", "80.00")
	require.NoError(t, db.Model(product).Update("is_active", false).Error)

	_, err := svc.AddItem(ctx, owner, product.ID, 1)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	active := seedCartProduct(t, db, "desk", "200.00")
	_, err = svc.AddItem(ctx, owner, active.ID, 0)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUpdateRemoveAndClear(t *testing.T) {
	svc, db := setupCartService(t)
	ctx := context.Background()
	owner := GuestOwner("guest-2")

	a := seedCartProduct(t, db, "mug", "10.00")
	b := seedCartProduct(t, db, "bowl", "15.00")

	_, err := svc.AddItem(ctx, owner, a.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, owner, b.ID, 2)
	require.NoError(t, err)

	view, err := svc.UpdateItem(ctx, owner, a.ID, 4)
	require.NoError(t, err)
	assert.True(t, view.Subtotal.Equal(decimal.RequireFromString("70.00")))

	view, err = svc.RemoveItem(ctx, owner, b.ID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)

	_, err = svc.RemoveItem(ctx, owner, b.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	require.NoError(t, svc.Clear(ctx, owner))
	view, err = svc.Get(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestMergeGuestCartCombinesQuantities(t *testing.T) {
	svc, db := setupCartService(t)
	ctx := context.Background()

	userID := uuid.New()
	user := UserOwner(userID)
	guest := GuestOwner("session-xyz")

	shared := seedCartProduct(t, db, "shared", "20.00")
	guestOnly := seedCartProduct(t, db, "guest-only", "5.00")

	_, err := svc.AddItem(ctx, user, shared.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, guest, shared.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, guest, guestOnly.ID, 3)
	require.NoError(t, err)

	require.NoError(t, svc.MergeGuestCart(ctx, "session-xyz", userID))

	guestView, err := svc.Get(ctx, guest)
	require.NoError(t, err)
	assert.Empty(t, guestView.Lines)

	userView, err := svc.Get(ctx, user)
	require.NoError(t, err)
	require.Len(t, userView.Lines, 2)

	byProduct := map[uuid.UUID]int{}
	for _, line := range userView.Lines {
		byProduct[line.ProductID] = line.Quantity
	}
	assert.Equal(t, 3, byProduct[shared.ID])
	assert.Equal(t, 3, byProduct[guestOnly.ID])
}

func TestDeleteGuestLinesBefore(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	stale := &models.CartLine{
		ID:        uuid.New(),
		SessionID: strPtr("stale-session"),
		ProductID: uuid.New(),
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(10),
	}
	fresh := &models.CartLine{
		ID:        uuid.New(),
		SessionID: strPtr("fresh-session"),
		ProductID: uuid.New(),
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(10),
	}
	userLine := &models.CartLine{
		ID:        uuid.New(),
		UserID:    &userID,
		ProductID: uuid.New(),
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(10),
	}
	require.NoError(t, db.Create(stale).Error)
	require.NoError(t, db.Create(fresh).Error)
	require.NoError(t, db.Create(userLine).Error)

	// age the stale guest line past the cutoff
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Model(stale).Update("updated_at", old).Error)
	require.NoError(t, db.Model(userLine).Update("updated_at", old).Error)

	purged, err := repo.DeleteGuestLinesBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	var remaining int64
	require.NoError(t, db.Model(&models.CartLine{}).Count(&remaining).Error)
	assert.EqualValues(t, 2, remaining)
}

func strPtr(s string) *string { return &s }
