package salesync

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/varejodata/salesync_backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database per test. The pool is pinned
// to one connection because each sqlite connection gets its own :memory: db.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Store{},
		&models.Product{}, &models.SaleLine{},
		&models.DailyAggregate{}, &models.MonthlyAggregate{}, &models.YearlyAggregate{},
		&models.SyncRun{}, &models.SyncItemError{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

// saleItem builds a valid upstream item; tests mutate the fields they care
// about.
func saleItem(saleCode string, seq int, store, productRef, channel, total string, soldAt time.Time) RawSaleItem {
	return RawSaleItem{
		SaleCode:         saleCode,
		ItemSeq:          seq,
		StoreCode:        store,
		CollaboratorCode: "0042",
		ProductRef:       productRef,
		Section:          "APPAREL",
		Group:            "SHIRTS",
		Subgroup:         "CASUAL",
		Brand:            "ACME",
		Description:      "Shirt " + productRef,
		Channel:          channel,
		Qty:              dec("1"),
		UnitPrice:        dec(total),
		TotalPrice:       dec(total),
		SoldAt:           soldAt.Add(13 * time.Hour),
	}
}

type fakeSource struct {
	items []RawSaleItem
	err   error
	calls int
}

func (f *fakeSource) FetchSaleItems(ctx context.Context, start, end time.Time) ([]RawSaleItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []RawSaleItem
	for _, item := range f.items {
		d := time.Date(item.SoldAt.Year(), item.SoldAt.Month(), item.SoldAt.Day(), 0, 0, 0, 0, time.UTC)
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return count
}
