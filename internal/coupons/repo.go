package coupons

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-backend/pkg/db/models"
	"storefront-backend/pkg/enums"
)

// Repository persists coupons and their redemption records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	List(ctx context.Context, limit, offset int) ([]models.Coupon, int64, error)
	Create(ctx context.Context, coupon *models.Coupon) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error

	// IncrementUsage bumps used_count only while the usage limit still has
	// room. A false return means the cap was hit by a concurrent redemption.
	IncrementUsage(ctx context.Context, couponID uuid.UUID) (bool, error)
	CreateUsage(ctx context.Context, usage *models.CouponUsage) error

	DeactivateExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeactivateExhausted(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a coupons repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ? AND status = ?", code, enums.CouponStatusActive).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]models.Coupon, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Coupon{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var coupons []models.Coupon
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&coupons).Error
	if err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}

func (r *repository) Create(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) IncrementUsage(ctx context.Context, couponID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE coupons
		SET used_count = used_count + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND (usage_limit IS NULL OR used_count < usage_limit)
	`, couponID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateUsage(ctx context.Context, usage *models.CouponUsage) error {
	return r.db.WithContext(ctx).Create(usage).Error
}

// DeactivateExpiredBefore retires active coupons whose validity window has
// fully passed.
func (r *repository) DeactivateExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("status = ? AND valid_to < ?", enums.CouponStatusActive, cutoff).
		Update("status", enums.CouponStatusInactive)
	return res.RowsAffected, res.Error
}

// DeactivateExhausted retires active coupons whose usage limit has been
// consumed.
func (r *repository) DeactivateExhausted(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("status = ? AND usage_limit IS NOT NULL AND used_count >= usage_limit", enums.CouponStatusActive).
		Update("status", enums.CouponStatusInactive)
	return res.RowsAffected, res.Error
}
