package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-backend/pkg/enums"
)

// Order is the header row produced by checkout. Totals satisfy
// TotalAmount = Subtotal + TaxAmount + ShippingAmount − DiscountAmount.
type Order struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber    string              `gorm:"column:order_number;not null;uniqueIndex"`
	UserID         uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	AddressID      uuid.UUID           `gorm:"column:address_id;type:uuid;not null"`
	Subtotal       decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TaxAmount      decimal.Decimal     `gorm:"column:tax_amount;type:numeric(12,2);not null"`
	ShippingAmount decimal.Decimal     `gorm:"column:shipping_amount;type:numeric(12,2);not null"`
	DiscountAmount decimal.Decimal     `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	TotalAmount    decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	CouponCode     *string             `gorm:"column:coupon_code"`
	Status         enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus  enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	Items          []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CancelledAt    *time.Time          `gorm:"column:cancelled_at"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
