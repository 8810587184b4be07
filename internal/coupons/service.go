package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-backend/pkg/db/models"
	"storefront-backend/pkg/enums"
	pkgerrors "storefront-backend/pkg/errors"
)

// Rejection reasons surfaced in a Quote.
const (
	ReasonNotFound      = "coupon not found or inactive"
	ReasonOutsideWindow = "coupon not valid at this time"
	ReasonUsageExceeded = "coupon usage limit reached"
	ReasonMinOrder      = "order subtotal below coupon minimum"
)

// Quote is the outcome of validating a code against a subtotal. Validation
// never mutates coupon state; redemption happens later inside the checkout
// transaction.
type Quote struct {
	Valid          bool
	Reason         string
	Coupon         *models.Coupon
	DiscountAmount decimal.Decimal
}

// CreateCouponInput carries admin-supplied coupon fields.
type CreateCouponInput struct {
	Code           string
	DiscountType   enums.DiscountType
	DiscountValue  decimal.Decimal
	MinOrderAmount decimal.Decimal
	MaxDiscount    *decimal.Decimal
	ValidFrom      time.Time
	ValidTo        time.Time
	UsageLimit     *int
	Status         enums.CouponStatus
}

// UpdateCouponInput carries optional admin updates; nil fields are untouched.
type UpdateCouponInput struct {
	DiscountValue  *decimal.Decimal
	MinOrderAmount *decimal.Decimal
	MaxDiscount    *decimal.Decimal
	ValidFrom      *time.Time
	ValidTo        *time.Time
	UsageLimit     *int
	Status         *enums.CouponStatus
}

// Service validates coupons for checkout and manages them for the back office.
type Service interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Quote, error)
	ValidateTx(ctx context.Context, tx *gorm.DB, code string, subtotal decimal.Decimal) (*Quote, error)

	List(ctx context.Context, limit, offset int) ([]models.Coupon, int64, error)
	Create(ctx context.Context, input CreateCouponInput) (*models.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCouponInput) (*models.Coupon, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the coupons service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Quote, error) {
	return s.ValidateTx(ctx, nil, code, subtotal)
}

// ValidateTx runs the validation against the provided transaction so checkout
// sees coupon state under its own isolation. A non-nil Quote with Valid=false
// carries the rejection reason; errors are reserved for infrastructure
// failures.
func (s *service) ValidateTx(ctx context.Context, tx *gorm.DB, code string, subtotal decimal.Decimal) (*Quote, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}

	repo := s.repo.WithTx(tx)
	coupon, err := repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Quote{Valid: false, Reason: ReasonNotFound, DiscountAmount: decimal.Zero}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	now := s.now()
	if now.Before(coupon.ValidFrom) || now.After(coupon.ValidTo) {
		return &Quote{Valid: false, Reason: ReasonOutsideWindow, Coupon: coupon, DiscountAmount: decimal.Zero}, nil
	}
	if coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit {
		return &Quote{Valid: false, Reason: ReasonUsageExceeded, Coupon: coupon, DiscountAmount: decimal.Zero}, nil
	}
	if subtotal.LessThan(coupon.MinOrderAmount) {
		return &Quote{Valid: false, Reason: ReasonMinOrder, Coupon: coupon, DiscountAmount: decimal.Zero}, nil
	}

	return &Quote{
		Valid:          true,
		Coupon:         coupon,
		DiscountAmount: discountFor(coupon, subtotal),
	}, nil
}

// discountFor applies the coupon math: percentage discounts are capped by
// max_discount when present; fixed discounts apply verbatim, even beyond the
// subtotal.
func discountFor(coupon *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		discount := subtotal.Mul(coupon.DiscountValue).Div(decimal.NewFromInt(100))
		if coupon.MaxDiscount != nil && discount.GreaterThan(*coupon.MaxDiscount) {
			discount = *coupon.MaxDiscount
		}
		return discount
	case enums.DiscountTypeFixed:
		return coupon.DiscountValue
	default:
		return decimal.Zero
	}
}

func (s *service) List(ctx context.Context, limit, offset int) ([]models.Coupon, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	coupons, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return coupons, total, nil
}

func (s *service) Create(ctx context.Context, input CreateCouponInput) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	if !input.DiscountType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount type must be percentage or fixed")
	}
	if input.DiscountValue.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
	}
	if input.DiscountType == enums.DiscountTypePercentage && input.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	if input.MinOrderAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum order amount must not be negative")
	}
	if !input.ValidTo.After(input.ValidFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_to must be after valid_from")
	}
	if input.UsageLimit != nil && *input.UsageLimit < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "usage limit must be at least 1")
	}

	status := input.Status
	if status == "" {
		status = enums.CouponStatusActive
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon status")
	}

	coupon := &models.Coupon{
		ID:             uuid.New(),
		Code:           code,
		DiscountType:   input.DiscountType,
		DiscountValue:  input.DiscountValue,
		MinOrderAmount: input.MinOrderAmount,
		MaxDiscount:    input.MaxDiscount,
		ValidFrom:      input.ValidFrom,
		ValidTo:        input.ValidTo,
		UsageLimit:     input.UsageLimit,
		Status:         status,
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "create coupon")
	}
	return coupon, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCouponInput) (*models.Coupon, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon id required")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	updates := map[string]any{}
	if input.DiscountValue != nil {
		if input.DiscountValue.LessThanOrEqual(decimal.Zero) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
		}
		updates["discount_value"] = *input.DiscountValue
	}
	if input.MinOrderAmount != nil {
		if input.MinOrderAmount.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum order amount must not be negative")
		}
		updates["min_order_amount"] = *input.MinOrderAmount
	}
	if input.MaxDiscount != nil {
		updates["max_discount"] = *input.MaxDiscount
	}
	if input.ValidFrom != nil {
		updates["valid_from"] = *input.ValidFrom
	}
	if input.ValidTo != nil {
		updates["valid_to"] = *input.ValidTo
	}
	if input.UsageLimit != nil {
		if *input.UsageLimit < existing.UsedCount {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "usage limit cannot drop below redemptions already used")
		}
		updates["usage_limit"] = *input.UsageLimit
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon status")
		}
		updates["status"] = *input.Status
	}
	if len(updates) == 0 {
		return existing, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
	}
	return s.repo.FindByID(ctx, id)
}
