package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront-backend/api/responses"
	"storefront-backend/internal/catalog"
	pkgerrors "storefront-backend/pkg/errors"
	"storefront-backend/pkg/logger"
)

// ProductList serves the public catalog with optional category, search and
// pagination filters. Only active products are visible here.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, offset, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.ListProducts(ctx, catalog.ProductFilter{
			CategorySlug: strings.TrimSpace(r.URL.Query().Get("category")),
			Search:       strings.TrimSpace(r.URL.Query().Get("q")),
			ActiveOnly:   true,
			Limit:        limit,
			Offset:       offset,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductPageDTO(page))
	}
}

// ProductDetail serves one product by slug.
func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}

		product, err := svc.GetProductBySlug(ctx, slug)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductDTO(product))
	}
}

// CategoryList serves the active categories for storefront navigation.
func CategoryList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		categories, err := svc.ListCategories(ctx, true)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]categoryDTO, 0, len(categories))
		for i := range categories {
			out = append(out, toCategoryDTO(&categories[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
