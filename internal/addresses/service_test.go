package addresses

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/pkg/db/dbtest"
	pkgerrors "storefront-backend/pkg/errors"
)

func validInput() Input {
	return Input{
		Label:      "home",
		Line1:      "12 Elm Street",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "US",
	}
}

func TestCreateAndDefaultHandling(t *testing.T) {
	db := dbtest.Open(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()
	userID := uuid.New()

	first := validInput()
	first.IsDefault = true
	created, err := svc.Create(ctx, userID, first)
	require.NoError(t, err)
	assert.True(t, created.IsDefault)

	second := validInput()
	second.Label = "office"
	second.IsDefault = true
	other, err := svc.Create(ctx, userID, second)
	require.NoError(t, err)
	assert.True(t, other.IsDefault)

	// only one default at a time
	rows, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	defaults := 0
	for _, row := range rows {
		if row.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestOwnershipEnforced(t *testing.T) {
	db := dbtest.Open(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	ownerID := uuid.New()
	created, err := svc.Create(ctx, ownerID, validInput())
	require.NoError(t, err)

	_, err = svc.Get(ctx, uuid.New(), created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	err = svc.Delete(ctx, uuid.New(), created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	require.NoError(t, svc.Delete(ctx, ownerID, created.ID))
	_, err = svc.Get(ctx, ownerID, created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	db := dbtest.Open(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	input := validInput()
	input.Line1 = " "
	input.City = ""
	_, err = svc.Create(context.Background(), uuid.New(), input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
