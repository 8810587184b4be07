package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"storefront-backend/api/responses"
	"storefront-backend/api/validators"
	"storefront-backend/internal/cart"
	"storefront-backend/internal/coupons"
	"storefront-backend/internal/orders"
	"storefront-backend/pkg/logger"
)

type checkoutRequest struct {
	AddressID  uuid.UUID `json:"address_id" validate:"required"`
	CouponCode *string   `json:"coupon_code"`
}

type couponValidateRequest struct {
	Code string `json:"code" validate:"required"`
}

// Checkout converts the caller's cart into an order. All stock, coupon and
// cart mutations happen in a single transaction inside the orders service.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := userIDFromRequest(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var couponCode *string
		if body.CouponCode != nil {
			if trimmed := strings.TrimSpace(*body.CouponCode); trimmed != "" {
				couponCode = &trimmed
			}
		}

		order, err := svc.PlaceOrder(ctx, orders.PlaceOrderInput{
			UserID:     userID,
			AddressID:  body.AddressID,
			Owner:      cart.UserOwner(userID),
			CouponCode: couponCode,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithOrderNumber(ctx, order.OrderNumber), "order placed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toOrderDTO(order))
	}
}

// CouponValidate quotes a coupon against the caller's current cart subtotal
// without consuming usage. The checkout transaction re-validates later.
func CouponValidate(quotes coupons.Service, carts cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		owner, err := cartOwnerFromRequest(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body couponValidateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := carts.Get(ctx, owner)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		quote, err := quotes.Validate(ctx, body.Code, view.Subtotal)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCouponQuoteDTO(quote))
	}
}
