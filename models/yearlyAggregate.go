package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// YearlyAggregate is the per-store year total, summed from MonthlyAggregate.
// Same upsert-in-place discipline as MonthlyAggregate.
type YearlyAggregate struct {
	StoreCode string `gorm:"primaryKey;size:10" json:"store_code"`
	Year      int    `gorm:"primaryKey" json:"year"`

	Total decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
