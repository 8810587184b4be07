package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-backend/pkg/db/models"
	pkgerrors "storefront-backend/pkg/errors"
)

// Setting keys used by checkout pricing.
const (
	KeyTaxRate               = "tax_rate"
	KeyFreeShippingThreshold = "free_shipping_amount"
	KeyShippingFee           = "shipping_amount"
)

// Defaults applied when a key is missing or unparseable.
var (
	DefaultTaxRate               = decimal.NewFromInt(18)
	DefaultFreeShippingThreshold = decimal.NewFromInt(500)
	DefaultShippingFee           = decimal.NewFromInt(50)
)

// CheckoutSettings is an immutable snapshot of the pricing configuration,
// loaded with a single query so one checkout never mixes old and new values.
type CheckoutSettings struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

// Service exposes settings reads for checkout and writes for the back office.
type Service interface {
	CheckoutSnapshot(ctx context.Context, tx *gorm.DB) (CheckoutSettings, error)
	List(ctx context.Context) ([]models.Setting, error)
	Set(ctx context.Context, key, value string) (*models.Setting, error)
}

type service struct {
	repo Repository
}

// NewService builds the settings service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo}, nil
}

// CheckoutSnapshot loads all pricing keys in one read. Pass the checkout
// transaction so the snapshot shares its isolation; tx may be nil for
// standalone reads.
func (s *service) CheckoutSnapshot(ctx context.Context, tx *gorm.DB) (CheckoutSettings, error) {
	repo := s.repo.WithTx(tx)
	rows, err := repo.FindByKeys(ctx, []string{KeyTaxRate, KeyFreeShippingThreshold, KeyShippingFee})
	if err != nil {
		return CheckoutSettings{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout settings")
	}

	byKey := make(map[string]string, len(rows))
	for _, row := range rows {
		byKey[row.Key] = row.Value
	}

	return CheckoutSettings{
		TaxRate:               decimalOrDefault(byKey[KeyTaxRate], DefaultTaxRate),
		FreeShippingThreshold: decimalOrDefault(byKey[KeyFreeShippingThreshold], DefaultFreeShippingThreshold),
		ShippingFee:           decimalOrDefault(byKey[KeyShippingFee], DefaultShippingFee),
	}, nil
}

func (s *service) List(ctx context.Context) ([]models.Setting, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settings")
	}
	return rows, nil
}

func (s *service) Set(ctx context.Context, key, value string) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting key required")
	}
	if strings.TrimSpace(value) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting value required")
	}

	if isNumericKey(key) {
		parsed, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("setting %q must be numeric", key))
		}
		if parsed.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("setting %q must not be negative", key))
		}
	}

	setting := &models.Setting{Key: key, Value: strings.TrimSpace(value)}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save setting")
	}
	return setting, nil
}

func isNumericKey(key string) bool {
	switch key {
	case KeyTaxRate, KeyFreeShippingThreshold, KeyShippingFee:
		return true
	}
	return false
}

func decimalOrDefault(raw string, fallback decimal.Decimal) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil || parsed.IsNegative() {
		return fallback
	}
	return parsed
}
