package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is the canonical catalog listing. StockQuantity is mutated only
// through guarded updates at order placement and cancellation.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID    *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	Name          string          `gorm:"column:name;not null"`
	Slug          string          `gorm:"column:slug;not null;uniqueIndex"`
	Description   *string         `gorm:"column:description"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0"`
	Tags          pq.StringArray  `gorm:"column:tags;type:text[];default:ARRAY[]::text[]"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	Category      *Category       `gorm:"foreignKey:CategoryID"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
