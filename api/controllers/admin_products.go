package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-backend/api/responses"
	"storefront-backend/api/validators"
	"storefront-backend/internal/catalog"
	pkgerrors "storefront-backend/pkg/errors"
	"storefront-backend/pkg/logger"
)

type createProductRequest struct {
	CategoryID    *uuid.UUID `json:"category_id"`
	Name          string     `json:"name" validate:"required"`
	Slug          string     `json:"slug" validate:"required"`
	Description   *string    `json:"description"`
	Price         string     `json:"price" validate:"required"`
	StockQuantity int        `json:"stock_quantity" validate:"min=0"`
	Tags          []string   `json:"tags"`
	IsActive      bool       `json:"is_active"`
}

type updateProductRequest struct {
	CategoryID    *uuid.UUID `json:"category_id"`
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	Price         *string    `json:"price"`
	StockQuantity *int       `json:"stock_quantity"`
	Tags          []string   `json:"tags"`
	IsActive      *bool      `json:"is_active"`
}

type categoryRequest struct {
	Name     string `json:"name" validate:"required"`
	Slug     string `json:"slug" validate:"required"`
	IsActive bool   `json:"is_active"`
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	return price, nil
}

// AdminProductList serves the full catalog, inactive products included.
func AdminProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, offset, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.ListProducts(ctx, catalog.ProductFilter{
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductPageDTO(page))
	}
}

// AdminProductCreate adds a catalog listing.
func AdminProductCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		price, err := parsePrice(body.Price)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.CreateProduct(ctx, catalog.CreateProductInput{
			CategoryID:    body.CategoryID,
			Name:          body.Name,
			Slug:          body.Slug,
			Description:   body.Description,
			Price:         price,
			StockQuantity: body.StockQuantity,
			Tags:          body.Tags,
			IsActive:      body.IsActive,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toProductDTO(product))
	}
}

// AdminProductUpdate applies partial listing changes.
func AdminProductUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		productID, err := uuidURLParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := catalog.UpdateProductInput{
			CategoryID:    body.CategoryID,
			Name:          body.Name,
			Description:   body.Description,
			StockQuantity: body.StockQuantity,
			Tags:          body.Tags,
			IsActive:      body.IsActive,
		}
		if body.Price != nil {
			price, err := parsePrice(*body.Price)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.Price = &price
		}

		product, err := svc.UpdateProduct(ctx, productID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductDTO(product))
	}
}

// AdminProductDeactivate hides a listing from the storefront. Existing order
// history keeps its captured product names.
func AdminProductDeactivate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		productID, err := uuidURLParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeactivateProduct(ctx, productID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deactivated": true})
	}
}

// AdminCategoryCreate adds a category.
func AdminCategoryCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body categoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		category, err := svc.CreateCategory(ctx, catalog.CategoryInput{
			Name:     body.Name,
			Slug:     body.Slug,
			IsActive: body.IsActive,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toCategoryDTO(category))
	}
}

// AdminCategoryUpdate replaces a category's fields.
func AdminCategoryUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		categoryID, err := uuidURLParam(r, "categoryId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body categoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		category, err := svc.UpdateCategory(ctx, categoryID, catalog.CategoryInput{
			Name:     body.Name,
			Slug:     body.Slug,
			IsActive: body.IsActive,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCategoryDTO(category))
	}
}
