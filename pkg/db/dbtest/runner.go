package dbtest

import (
	"context"

	"gorm.io/gorm"
)

// Runner satisfies the transaction-runner interface used by services, backed
// by a plain gorm connection.
type Runner struct {
	DB *gorm.DB
}

// WithTx executes fn inside a transaction, rolling back on error.
func (r Runner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
