package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-backend/pkg/enums"
)

// Coupon is a discount code with a validity window and an optional usage cap.
// UsedCount never exceeds UsageLimit when the limit is set; the increment is
// guarded at redemption time.
type Coupon struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code           string             `gorm:"column:code;not null;uniqueIndex"`
	DiscountType   enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	DiscountValue  decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	MinOrderAmount decimal.Decimal    `gorm:"column:min_order_amount;type:numeric(12,2);not null;default:0"`
	MaxDiscount    *decimal.Decimal   `gorm:"column:max_discount;type:numeric(12,2)"`
	ValidFrom      time.Time          `gorm:"column:valid_from;not null"`
	ValidTo        time.Time          `gorm:"column:valid_to;not null"`
	UsageLimit     *int               `gorm:"column:usage_limit"`
	UsedCount      int                `gorm:"column:used_count;not null;default:0"`
	Status         enums.CouponStatus `gorm:"column:status;type:text;not null;default:'active'"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
