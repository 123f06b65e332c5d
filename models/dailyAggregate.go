package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyAggregate holds per-store, per-day revenue totals split by channel.
//
// Grain: (store_code, sale_date). The row is a deterministic function of the
// sale lines for that store/day, so a re-run replaces the subtotals instead
// of adding to them. A day with no sales keeps an explicit all-zero row.
type DailyAggregate struct {
	StoreCode string    `gorm:"primaryKey;size:10" json:"store_code"`
	SaleDate  time.Time `gorm:"primaryKey" json:"sale_date"`

	InvoicedTotal decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"invoiced_total"`
	PosTotal      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"pos_total"`
	ExchangeTotal decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"exchange_total"`
	Total         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
