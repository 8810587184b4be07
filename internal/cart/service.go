package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-backend/internal/catalog"
	"storefront-backend/pkg/db/models"
	pkgerrors "storefront-backend/pkg/errors"
)

// View is the cart as returned to clients: lines plus the subtotal computed
// from the captured unit prices.
type View struct {
	Lines    []models.CartLine
	Subtotal decimal.Decimal
}

// Service exposes cart operations for storefront customers and guests.
type Service interface {
	Get(ctx context.Context, owner Owner) (*View, error)
	AddItem(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) (*View, error)
	UpdateItem(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID) (*View, error)
	Clear(ctx context.Context, owner Owner) error
	MergeGuestCart(ctx context.Context, sessionID string, userID uuid.UUID) error
}

type productReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     Repository
	products productReader
}

// NewService builds the cart service.
func NewService(repo Repository, products catalog.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) Get(ctx context.Context, owner Owner) (*View, error) {
	if !owner.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	return s.buildView(ctx, owner)
}

// AddItem upserts a line: adding a product already in the cart increases the
// quantity but keeps the unit price captured on first add.
func (s *service) AddItem(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) (*View, error) {
	if !owner.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	existing, err := s.repo.FindLine(ctx, owner, productID)
	switch {
	case err == nil:
		if err := s.repo.UpdateLineQuantity(ctx, existing.ID, existing.Quantity+quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		line := &models.CartLine{
			ID:        uuid.New(),
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: product.Price,
		}
		if userID, ok := owner.UserID(); ok {
			line.UserID = &userID
		}
		if sessionID, ok := owner.SessionID(); ok {
			line.SessionID = &sessionID
		}
		if err := s.repo.CreateLine(ctx, line); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart line")
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}

	return s.buildView(ctx, owner)
}

func (s *service) UpdateItem(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) (*View, error) {
	if !owner.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	line, err := s.repo.FindLine(ctx, owner, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	if err := s.repo.UpdateLineQuantity(ctx, line.ID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
	}
	return s.buildView(ctx, owner)
}

func (s *service) RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID) (*View, error) {
	if !owner.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	removed, err := s.repo.DeleteLine(ctx, owner, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	return s.buildView(ctx, owner)
}

func (s *service) Clear(ctx context.Context, owner Owner) error {
	if !owner.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	if err := s.repo.Clear(ctx, owner); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) MergeGuestCart(ctx context.Context, sessionID string, userID uuid.UUID) error {
	if sessionID == "" || userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id and user id required")
	}
	if err := s.repo.MergeGuestIntoUser(ctx, sessionID, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge guest cart")
	}
	return nil
}

func (s *service) buildView(ctx context.Context, owner Owner) (*View, error) {
	lines, err := s.repo.ListLines(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return &View{Lines: lines, Subtotal: subtotal}, nil
}
