package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"storefront-backend/api/middleware"
	"storefront-backend/internal/cart"
	pkgerrors "storefront-backend/pkg/errors"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func userIDFromRequest(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user identity")
	}
	return id, nil
}

// cartOwnerFromRequest resolves the cart identity: an authenticated user wins,
// otherwise the guest session header identifies the cart.
func cartOwnerFromRequest(ctx context.Context) (cart.Owner, error) {
	if raw := middleware.UserIDFromContext(ctx); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return cart.Owner{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user identity")
		}
		return cart.UserOwner(id), nil
	}
	if sessionID := middleware.GuestSessionFromContext(ctx); sessionID != "" {
		return cart.GuestOwner(sessionID), nil
	}
	return cart.Owner{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "credentials or guest session required")
}

func uuidURLParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

func pageParams(r *http.Request) (limit, offset int, err error) {
	limit = defaultPageLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		value, parseErr := strconv.Atoi(raw)
		if parseErr != nil || value <= 0 {
			return 0, 0, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer")
		}
		if value > maxPageLimit {
			value = maxPageLimit
		}
		limit = value
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("offset")); raw != "" {
		value, parseErr := strconv.Atoi(raw)
		if parseErr != nil || value < 0 {
			return 0, 0, pkgerrors.New(pkgerrors.CodeValidation, "offset must be a non-negative integer")
		}
		offset = value
	}
	return limit, offset, nil
}
