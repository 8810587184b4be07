package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-backend/internal/addresses"
	"storefront-backend/internal/cart"
	"storefront-backend/internal/catalog"
	"storefront-backend/internal/coupons"
	"storefront-backend/internal/settings"
	"storefront-backend/pkg/db/models"
	"storefront-backend/pkg/enums"
	pkgerrors "storefront-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PlaceOrderInput carries everything checkout needs. Owner identifies the
// cart being converted; for guests it differs from the purchasing user.
type PlaceOrderInput struct {
	UserID     uuid.UUID
	AddressID  uuid.UUID
	Owner      cart.Owner
	CouponCode *string
}

// CancelInput identifies the order and who is asking.
type CancelInput struct {
	OrderID     uuid.UUID
	RequesterID uuid.UUID
	AsAdmin     bool
}

// Page is one page of an order listing.
type Page struct {
	Orders []models.Order
	Total  int64
	Limit  int
	Offset int
}

// Service drives checkout, cancellation, status transitions and order reads.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	Cancel(ctx context.Context, input CancelInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, next enums.PaymentStatus) (*models.Order, error)

	GetForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	History(ctx context.Context, userID uuid.UUID, limit, offset int) (*Page, error)
	ListAll(ctx context.Context, filter ListFilter) (*Page, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	carts     cart.Repository
	catalog   catalog.Repository
	coupons   coupons.Repository
	quotes    coupons.Service
	settings  settings.Service
	addresses addresses.Repository
	now       func() time.Time
}

// NewService builds the orders service with the required dependencies.
func NewService(
	repo Repository,
	tx txRunner,
	carts cart.Repository,
	catalogRepo catalog.Repository,
	couponRepo coupons.Repository,
	quotes coupons.Service,
	settingsSvc settings.Service,
	addressRepo addresses.Repository,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if couponRepo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	if quotes == nil {
		return nil, fmt.Errorf("coupons service required")
	}
	if settingsSvc == nil {
		return nil, fmt.Errorf("settings service required")
	}
	if addressRepo == nil {
		return nil, fmt.Errorf("addresses repository required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		carts:     carts,
		catalog:   catalogRepo,
		coupons:   couponRepo,
		quotes:    quotes,
		settings:  settingsSvc,
		addresses: addressRepo,
		now:       time.Now,
	}, nil
}

// PlaceOrder converts the owner's cart into an order. The whole flow runs in
// one transaction: any failure, including a losing race on stock or on a
// coupon's usage cap, rolls everything back.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.AddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id required")
	}
	if !input.Owner.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}

	var placed *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		carts := s.carts.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)
		couponRepo := s.coupons.WithTx(tx)
		addressRepo := s.addresses.WithTx(tx)

		lines, err := carts.ListLines(ctx, input.Owner)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		address, err := addressRepo.FindByID(ctx, input.AddressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "address does not exist")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
		}
		if address.UserID != input.UserID {
			return pkgerrors.New(pkgerrors.CodeValidation, "address does not belong to user")
		}

		products, err := s.loadProducts(ctx, catalogRepo, lines)
		if err != nil {
			return err
		}

		// subtotal from the captured snapshots, never the live price
		subtotal := decimal.Zero
		for _, line := range lines {
			subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		snapshot, err := s.settings.CheckoutSnapshot(ctx, tx)
		if err != nil {
			return err
		}
		taxAmount := subtotal.Mul(snapshot.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
		shippingAmount := snapshot.ShippingFee
		if subtotal.GreaterThanOrEqual(snapshot.FreeShippingThreshold) {
			shippingAmount = decimal.Zero
		}

		// invalid coupon at checkout means zero discount, not a failed order
		discount := decimal.Zero
		var quote *coupons.Quote
		if input.CouponCode != nil && *input.CouponCode != "" {
			quote, err = s.quotes.ValidateTx(ctx, tx, *input.CouponCode, subtotal)
			if err != nil {
				return err
			}
			if quote.Valid {
				discount = quote.DiscountAmount.Round(2)
			}
		}

		// a fixed discount larger than the charges floors the total at zero
		total := subtotal.Add(taxAmount).Add(shippingAmount).Sub(discount)
		if total.IsNegative() {
			total = decimal.Zero
		}

		orderNumber, err := newOrderNumber(s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "order number")
		}

		order := &models.Order{
			ID:             uuid.New(),
			OrderNumber:    orderNumber,
			UserID:         input.UserID,
			AddressID:      input.AddressID,
			Subtotal:       subtotal,
			TaxAmount:      taxAmount,
			ShippingAmount: shippingAmount,
			DiscountAmount: discount,
			TotalAmount:    total,
			Status:         enums.OrderStatusPending,
			PaymentStatus:  enums.PaymentStatusUnpaid,
		}
		if discount.GreaterThan(decimal.Zero) {
			order.CouponCode = input.CouponCode
		}
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			product := products[line.ProductID]
			productID := line.ProductID
			items = append(items, models.OrderItem{
				ID:          uuid.New(),
				OrderID:     order.ID,
				ProductID:   &productID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				LineTotal:   line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
			})
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}

		for _, line := range lines {
			ok, err := catalogRepo.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("insufficient stock for %s", products[line.ProductID].Name)).
					WithDetails(map[string]any{"product_id": line.ProductID})
			}
		}

		if err := carts.Clear(ctx, input.Owner); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		if discount.GreaterThan(decimal.Zero) {
			ok, err := couponRepo.IncrementUsage(ctx, quote.Coupon.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redeem coupon")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeCouponInvalid, "coupon usage limit reached")
			}
			usage := &models.CouponUsage{
				ID:             uuid.New(),
				CouponID:       quote.Coupon.ID,
				UserID:         input.UserID,
				OrderID:        order.ID,
				DiscountAmount: discount,
			}
			if err := couponRepo.CreateUsage(ctx, usage); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record coupon usage")
			}
		}

		order.Items = items
		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// Cancel moves an order to cancelled and restores stock for every line item.
// Coupon usage is intentionally not reversed.
func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.AsAdmin && input.RequesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var cancelled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)

		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !input.AsAdmin && order.UserID != input.RequesterID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}
		if !order.Status.IsCancellable() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order in status %s cannot be cancelled", order.Status))
		}

		for _, item := range order.Items {
			if item.ProductID == nil {
				continue
			}
			if err := catalogRepo.RestoreStock(ctx, *item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
			}
		}

		now := s.now()
		updates := map[string]any{
			"status":       enums.OrderStatusCancelled,
			"cancelled_at": now,
		}
		if err := repo.UpdateStatus(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		order.Status = enums.OrderStatusCancelled
		order.CancelledAt = &now
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// UpdateStatus drives forward lifecycle transitions from the back office.
// Cancellation goes through Cancel so stock restoration is not skipped.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if next == enums.OrderStatusCancelled {
		return s.Cancel(ctx, CancelInput{OrderID: orderID, AsAdmin: true})
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !order.Status.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot transition from %s to %s", order.Status, next))
		}
		if err := repo.UpdateStatus(ctx, order.ID, map[string]any{"status": next}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		order.Status = next
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, next enums.PaymentStatus) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := s.repo.UpdateStatus(ctx, order.ID, map[string]any{"payment_status": next}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
	}
	order.PaymentStatus = next
	return order, nil
}

func (s *service) GetForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return order, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, limit, offset int) (*Page, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.ListAll(ctx, ListFilter{UserID: &userID, Limit: limit, Offset: offset})
}

func (s *service) ListAll(ctx context.Context, filter ListFilter) (*Page, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &Page{Orders: rows, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *service) loadProducts(ctx context.Context, repo catalog.Repository, lines []models.CartLine) (map[uuid.UUID]models.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := repo.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	for _, line := range lines {
		if _, ok := byID[line.ProductID]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product no longer available").
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
	}
	return byID, nil
}
