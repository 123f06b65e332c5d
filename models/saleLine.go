package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SaleLine is one itemized line of an upstream sale. The composite natural
// key (sale_code, product_ref, item_seq) is what makes re-imports safe:
// duplicates are detected against it and skipped, never overwritten.
//
// Rows are append-only. Aggregates are derived from them, never the other
// way around.
type SaleLine struct {
	SaleCode   string `gorm:"primaryKey;size:30" json:"sale_code"`
	ProductRef string `gorm:"primaryKey;size:30" json:"product_ref"`
	ItemSeq    int    `gorm:"primaryKey" json:"item_seq"`

	StoreCode        string      `gorm:"size:10;not null;index:idx_sale_lines_store_sold,priority:1" json:"store_code"`
	CollaboratorCode string      `gorm:"size:10" json:"collaborator_code"`
	Channel          SaleChannel `gorm:"size:1;not null" json:"channel"`

	Qty        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_price"`

	SoldAt time.Time `gorm:"not null;index:idx_sale_lines_store_sold,priority:2" json:"sold_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// NaturalKey renders the composite key in one comparable string. Used by
// the importer's in-memory membership sets.
func (l SaleLine) NaturalKey() string {
	return SaleLineKey(l.SaleCode, l.ProductRef, l.ItemSeq)
}

func SaleLineKey(saleCode, productRef string, itemSeq int) string {
	return fmt.Sprintf("%s|%s|%d", saleCode, productRef, itemSeq)
}
