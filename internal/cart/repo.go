package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-backend/pkg/db/models"
)

// Repository persists cart lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListLines(ctx context.Context, owner Owner) ([]models.CartLine, error)
	FindLine(ctx context.Context, owner Owner, productID uuid.UUID) (*models.CartLine, error)
	CreateLine(ctx context.Context, line *models.CartLine) error
	UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, owner Owner, productID uuid.UUID) (bool, error)
	Clear(ctx context.Context, owner Owner) error
	MergeGuestIntoUser(ctx context.Context, sessionID string, userID uuid.UUID) error
	DeleteGuestLinesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListLines(ctx context.Context, owner Owner) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := owner.scope(r.db.WithContext(ctx)).
		Preload("Product").
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) FindLine(ctx context.Context, owner Owner, productID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := owner.scope(r.db.WithContext(ctx)).
		Where("product_id = ?", productID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) CreateLine(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ?", lineID).
		Updates(map[string]any{"quantity": quantity}).Error
}

func (r *repository) DeleteLine(ctx context.Context, owner Owner, productID uuid.UUID) (bool, error) {
	res := owner.scope(r.db.WithContext(ctx)).
		Where("product_id = ?", productID).
		Delete(&models.CartLine{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) Clear(ctx context.Context, owner Owner) error {
	return owner.scope(r.db.WithContext(ctx)).Delete(&models.CartLine{}).Error
}

// MergeGuestIntoUser moves guest lines to the user's cart. Lines whose product
// already sits in the user cart have their quantities added to the user line;
// the rest are re-owned in place.
func (r *repository) MergeGuestIntoUser(ctx context.Context, sessionID string, userID uuid.UUID) error {
	var guestLines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Find(&guestLines).Error
	if err != nil {
		return err
	}

	for _, guestLine := range guestLines {
		var userLine models.CartLine
		err := r.db.WithContext(ctx).
			Where("user_id = ? AND product_id = ?", userID, guestLine.ProductID).
			First(&userLine).Error
		switch {
		case err == nil:
			err = r.db.WithContext(ctx).
				Model(&models.CartLine{}).
				Where("id = ?", userLine.ID).
				Update("quantity", userLine.Quantity+guestLine.Quantity).Error
			if err != nil {
				return err
			}
			err = r.db.WithContext(ctx).
				Where("id = ?", guestLine.ID).
				Delete(&models.CartLine{}).Error
			if err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			err = r.db.WithContext(ctx).
				Model(&models.CartLine{}).
				Where("id = ?", guestLine.ID).
				Updates(map[string]any{"user_id": userID, "session_id": nil}).Error
			if err != nil {
				return err
			}
		default:
			return err
		}
	}
	return nil
}

func (r *repository) DeleteGuestLinesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("session_id IS NOT NULL AND updated_at < ?", cutoff).
		Delete(&models.CartLine{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
