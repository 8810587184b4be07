package settings

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront-backend/pkg/db/models"
)

// Repository reads and writes the key/value settings table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByKeys(ctx context.Context, keys []string) ([]models.Setting, error)
	FindAll(ctx context.Context) ([]models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a settings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByKeys(ctx context.Context, keys []string) ([]models.Setting, error) {
	var rows []models.Setting
	err := r.db.WithContext(ctx).
		Where("key IN ?", keys).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindAll(ctx context.Context) ([]models.Setting, error) {
	var rows []models.Setting
	err := r.db.WithContext(ctx).
		Order("key ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Upsert(ctx context.Context, setting *models.Setting) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(setting).Error
}
