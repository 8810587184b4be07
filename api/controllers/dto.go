package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-backend/internal/cart"
	"storefront-backend/internal/catalog"
	"storefront-backend/internal/coupons"
	"storefront-backend/internal/orders"
	"storefront-backend/pkg/db/models"
)

type productDTO struct {
	ID            uuid.UUID  `json:"id"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Description   *string    `json:"description,omitempty"`
	Price         string     `json:"price"`
	StockQuantity int        `json:"stock_quantity"`
	Tags          []string   `json:"tags"`
	IsActive      bool       `json:"is_active"`
}

func toProductDTO(p *models.Product) productDTO {
	return productDTO{
		ID:            p.ID,
		CategoryID:    p.CategoryID,
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		Price:         p.Price.StringFixed(2),
		StockQuantity: p.StockQuantity,
		Tags:          []string(p.Tags),
		IsActive:      p.IsActive,
	}
}

type productPageDTO struct {
	Products []productDTO `json:"products"`
	Total    int64        `json:"total"`
	Limit    int          `json:"limit"`
	Offset   int          `json:"offset"`
}

func toProductPageDTO(page *catalog.ProductPage) productPageDTO {
	out := productPageDTO{
		Products: make([]productDTO, 0, len(page.Products)),
		Total:    page.Total,
		Limit:    page.Limit,
		Offset:   page.Offset,
	}
	for i := range page.Products {
		out.Products = append(out.Products, toProductDTO(&page.Products[i]))
	}
	return out
}

type categoryDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	IsActive bool      `json:"is_active"`
}

func toCategoryDTO(c *models.Category) categoryDTO {
	return categoryDTO{ID: c.ID, Name: c.Name, Slug: c.Slug, IsActive: c.IsActive}
}

type cartLineDTO struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Quantity    int       `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	LineTotal   string    `json:"line_total"`
}

type cartViewDTO struct {
	Lines    []cartLineDTO `json:"lines"`
	Subtotal string        `json:"subtotal"`
}

func toCartViewDTO(view *cart.View) cartViewDTO {
	out := cartViewDTO{
		Lines:    make([]cartLineDTO, 0, len(view.Lines)),
		Subtotal: view.Subtotal.StringFixed(2),
	}
	for i := range view.Lines {
		line := &view.Lines[i]
		dto := cartLineDTO{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.StringFixed(2),
			LineTotal: line.UnitPrice.Mul(decimalFromInt(line.Quantity)).StringFixed(2),
		}
		if line.Product != nil {
			dto.ProductName = line.Product.Name
		}
		out.Lines = append(out.Lines, dto)
	}
	return out
}

func decimalFromInt(value int) decimal.Decimal {
	return decimal.NewFromInt(int64(value))
}

type orderItemDTO struct {
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	ProductName string     `json:"product_name"`
	Quantity    int        `json:"quantity"`
	UnitPrice   string     `json:"unit_price"`
	LineTotal   string     `json:"line_total"`
}

type orderDTO struct {
	ID             uuid.UUID      `json:"id"`
	OrderNumber    string         `json:"order_number"`
	Subtotal       string         `json:"subtotal"`
	TaxAmount      string         `json:"tax_amount"`
	ShippingAmount string         `json:"shipping_amount"`
	DiscountAmount string         `json:"discount_amount"`
	TotalAmount    string         `json:"total_amount"`
	CouponCode     *string        `json:"coupon_code,omitempty"`
	Status         string         `json:"status"`
	PaymentStatus  string         `json:"payment_status"`
	Items          []orderItemDTO `json:"items,omitempty"`
	CancelledAt    *time.Time     `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

func toOrderDTO(order *models.Order) orderDTO {
	out := orderDTO{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		Subtotal:       order.Subtotal.StringFixed(2),
		TaxAmount:      order.TaxAmount.StringFixed(2),
		ShippingAmount: order.ShippingAmount.StringFixed(2),
		DiscountAmount: order.DiscountAmount.StringFixed(2),
		TotalAmount:    order.TotalAmount.StringFixed(2),
		CouponCode:     order.CouponCode,
		Status:         string(order.Status),
		PaymentStatus:  string(order.PaymentStatus),
		CancelledAt:    order.CancelledAt,
		CreatedAt:      order.CreatedAt,
	}
	for i := range order.Items {
		item := &order.Items[i]
		out.Items = append(out.Items, orderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			LineTotal:   item.LineTotal.StringFixed(2),
		})
	}
	return out
}

type orderPageDTO struct {
	Orders []orderDTO `json:"orders"`
	Total  int64      `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

func toOrderPageDTO(page *orders.Page) orderPageDTO {
	out := orderPageDTO{
		Orders: make([]orderDTO, 0, len(page.Orders)),
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	for i := range page.Orders {
		out.Orders = append(out.Orders, toOrderDTO(&page.Orders[i]))
	}
	return out
}

type addressDTO struct {
	ID         uuid.UUID `json:"id"`
	Label      string    `json:"label"`
	Line1      string    `json:"line1"`
	Line2      *string   `json:"line2,omitempty"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	Phone      *string   `json:"phone,omitempty"`
	IsDefault  bool      `json:"is_default"`
}

func toAddressDTO(a *models.Address) addressDTO {
	return addressDTO{
		ID:         a.ID,
		Label:      a.Label,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
		IsDefault:  a.IsDefault,
	}
}

type couponDTO struct {
	ID             uuid.UUID `json:"id"`
	Code           string    `json:"code"`
	DiscountType   string    `json:"discount_type"`
	DiscountValue  string    `json:"discount_value"`
	MinOrderAmount string    `json:"min_order_amount"`
	MaxDiscount    *string   `json:"max_discount,omitempty"`
	ValidFrom      time.Time `json:"valid_from"`
	ValidTo        time.Time `json:"valid_to"`
	UsageLimit     *int      `json:"usage_limit,omitempty"`
	UsedCount      int       `json:"used_count"`
	Status         string    `json:"status"`
}

func toCouponDTO(c *models.Coupon) couponDTO {
	out := couponDTO{
		ID:             c.ID,
		Code:           c.Code,
		DiscountType:   string(c.DiscountType),
		DiscountValue:  c.DiscountValue.StringFixed(2),
		MinOrderAmount: c.MinOrderAmount.StringFixed(2),
		ValidFrom:      c.ValidFrom,
		ValidTo:        c.ValidTo,
		UsageLimit:     c.UsageLimit,
		UsedCount:      c.UsedCount,
		Status:         string(c.Status),
	}
	if c.MaxDiscount != nil {
		value := c.MaxDiscount.StringFixed(2)
		out.MaxDiscount = &value
	}
	return out
}

type couponQuoteDTO struct {
	Valid          bool   `json:"valid"`
	Reason         string `json:"reason,omitempty"`
	Code           string `json:"code,omitempty"`
	DiscountAmount string `json:"discount_amount"`
}

func toCouponQuoteDTO(quote *coupons.Quote) couponQuoteDTO {
	out := couponQuoteDTO{
		Valid:          quote.Valid,
		Reason:         quote.Reason,
		DiscountAmount: quote.DiscountAmount.StringFixed(2),
	}
	if quote.Coupon != nil {
		out.Code = quote.Coupon.Code
	}
	return out
}

type userDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
	}
}

type wishlistItemDTO struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

func toWishlistItemDTO(item *models.WishlistItem) wishlistItemDTO {
	return wishlistItemDTO{ID: item.ID, ProductID: item.ProductID, AddedAt: item.CreatedAt}
}

type settingDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func toSettingDTO(s *models.Setting) settingDTO {
	return settingDTO{Key: s.Key, Value: s.Value}
}
