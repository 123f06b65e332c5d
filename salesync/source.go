package salesync

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RawSaleItem is one itemized sale record as delivered by the upstream
// source system. The sync engine treats the source as a black box behind
// SaleSource; transport, pagination and retries live in the client.
type RawSaleItem struct {
	SaleCode         string          `json:"sale_code"`
	ItemSeq          int             `json:"item_seq"`
	StoreCode        string          `json:"store_code"`
	CollaboratorCode string          `json:"collaborator_code"`
	ProductRef       string          `json:"product_ref"`
	Section          string          `json:"section"`
	Group            string          `json:"group"`
	Subgroup         string          `json:"subgroup"`
	Brand            string          `json:"brand"`
	Description      string          `json:"description"`
	Channel          string          `json:"channel"`
	Qty              decimal.Decimal `json:"qty"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	SoldAt           time.Time       `json:"sold_at"`
}

// SaleSource is the upstream fetch contract. Implementations return every
// sale item whose timestamp falls in [start, end] (whole days, inclusive).
type SaleSource interface {
	FetchSaleItems(ctx context.Context, start, end time.Time) ([]RawSaleItem, error)
}
