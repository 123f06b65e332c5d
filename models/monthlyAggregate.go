package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyAggregate is the per-store month total, summed from DailyAggregate.
//
// Grain: (store_code, year, month). The same month is re-rolled every day
// while it is open and once more at closure, so the row is always upserted
// in place, never duplicated.
type MonthlyAggregate struct {
	StoreCode string `gorm:"primaryKey;size:10" json:"store_code"`
	Year      int    `gorm:"primaryKey" json:"year"`
	Month     int    `gorm:"primaryKey" json:"month"`

	Total decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
