package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"storefront-backend/api/responses"
	"storefront-backend/api/validators"
	"storefront-backend/internal/coupons"
	"storefront-backend/pkg/enums"
	pkgerrors "storefront-backend/pkg/errors"
	"storefront-backend/pkg/logger"
)

type createCouponRequest struct {
	Code           string    `json:"code" validate:"required"`
	DiscountType   string    `json:"discount_type" validate:"required"`
	DiscountValue  string    `json:"discount_value" validate:"required"`
	MinOrderAmount string    `json:"min_order_amount"`
	MaxDiscount    *string   `json:"max_discount"`
	ValidFrom      time.Time `json:"valid_from" validate:"required"`
	ValidTo        time.Time `json:"valid_to" validate:"required"`
	UsageLimit     *int      `json:"usage_limit"`
}

type updateCouponRequest struct {
	DiscountValue  *string    `json:"discount_value"`
	MinOrderAmount *string    `json:"min_order_amount"`
	MaxDiscount    *string    `json:"max_discount"`
	ValidFrom      *time.Time `json:"valid_from"`
	ValidTo        *time.Time `json:"valid_to"`
	UsageLimit     *int       `json:"usage_limit"`
	Status         *string    `json:"status"`
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return value, nil
}

// AdminCouponList pages through all coupons regardless of status.
func AdminCouponList(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, offset, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, total, err := svc.List(ctx, limit, offset)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]couponDTO, 0, len(list))
		for i := range list {
			out = append(out, toCouponDTO(&list[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"coupons": out,
			"total":   total,
			"limit":   limit,
			"offset":  offset,
		})
	}
}

// AdminCouponCreate registers a new coupon.
func AdminCouponCreate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body createCouponRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		discountType, err := enums.ParseDiscountType(body.DiscountType)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type"))
			return
		}

		discountValue, err := parseAmount(body.DiscountValue, "discount value")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		minOrder, err := parseAmount(body.MinOrderAmount, "minimum order amount")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := coupons.CreateCouponInput{
			Code:           body.Code,
			DiscountType:   discountType,
			DiscountValue:  discountValue,
			MinOrderAmount: minOrder,
			ValidFrom:      body.ValidFrom,
			ValidTo:        body.ValidTo,
			UsageLimit:     body.UsageLimit,
			Status:         enums.CouponStatusActive,
		}
		if body.MaxDiscount != nil {
			maxDiscount, err := parseAmount(*body.MaxDiscount, "max discount")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.MaxDiscount = &maxDiscount
		}

		coupon, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toCouponDTO(coupon))
	}
}

// AdminCouponUpdate applies partial coupon changes.
func AdminCouponUpdate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		couponID, err := uuidURLParam(r, "couponId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body updateCouponRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := coupons.UpdateCouponInput{
			ValidFrom:  body.ValidFrom,
			ValidTo:    body.ValidTo,
			UsageLimit: body.UsageLimit,
		}
		if body.DiscountValue != nil {
			value, err := parseAmount(*body.DiscountValue, "discount value")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.DiscountValue = &value
		}
		if body.MinOrderAmount != nil {
			value, err := parseAmount(*body.MinOrderAmount, "minimum order amount")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.MinOrderAmount = &value
		}
		if body.MaxDiscount != nil {
			value, err := parseAmount(*body.MaxDiscount, "max discount")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.MaxDiscount = &value
		}
		if body.Status != nil {
			status, err := enums.ParseCouponStatus(*body.Status)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}

		coupon, err := svc.Update(ctx, couponID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCouponDTO(coupon))
	}
}
