package salesync

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/varejodata/salesync_backend/config"
	"github.com/varejodata/salesync_backend/models"
	"github.com/varejodata/salesync_backend/utils"
	"gorm.io/gorm"
)

func seedDaily(t *testing.T, db *gorm.DB, store string, date time.Time, total string) {
	t.Helper()
	row := models.DailyAggregate{
		StoreCode:     store,
		SaleDate:      date,
		InvoicedTotal: dec(total),
		Total:         dec(total),
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed daily aggregate: %v", err)
	}
}

func TestDailyAggregateSumsInvoicedChannel(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	date := day(2025, time.September, 13)

	batch := []RawSaleItem{
		saleItem("037955", 1, "000002", "010984", "I", "500.00", date),
		saleItem("037955", 2, "000002", "010984", "I", "988.00", date),
		saleItem("037956", 1, "000002", "020111", "I", "300.00", date),
	}
	if _, err := ImportSaleLines(ctx, db, 0, batch); err != nil {
		t.Fatalf("import: %v", err)
	}

	created, updated, failed, err := RecomputeDailyAggregates(ctx, db, []string{"000002"}, []time.Time{date})
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if created != 1 || updated != 0 || failed != 0 {
		t.Fatalf("created=%d updated=%d failed=%d, want 1/0/0", created, updated, failed)
	}

	var agg models.DailyAggregate
	if err := db.Where("store_code = ? AND sale_date = ?", "000002", date).Take(&agg).Error; err != nil {
		t.Fatalf("load aggregate: %v", err)
	}
	if !agg.InvoicedTotal.Equal(dec("1788.00")) {
		t.Fatalf("invoiced total = %s, want 1788.00", agg.InvoicedTotal)
	}
	if !agg.Total.Equal(dec("1788.00")) {
		t.Fatalf("total = %s, want 1788.00", agg.Total)
	}
	if !agg.PosTotal.IsZero() || !agg.ExchangeTotal.IsZero() {
		t.Fatalf("other channels not zero: %+v", agg)
	}
}

func TestDailyAggregateEmitsExplicitZeroRow(t *testing.T) {
	db := newTestDB(t)
	date := day(2025, time.September, 14)

	created, _, _, err := RecomputeDailyAggregates(context.Background(), db, []string{"000002"}, []time.Time{date})
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	var agg models.DailyAggregate
	if err := db.Where("store_code = ? AND sale_date = ?", "000002", date).Take(&agg).Error; err != nil {
		t.Fatalf("zero row missing: %v", err)
	}
	if !agg.Total.IsZero() || !agg.InvoicedTotal.IsZero() || !agg.PosTotal.IsZero() || !agg.ExchangeTotal.IsZero() {
		t.Fatalf("expected all-zero row, got %+v", agg)
	}
}

func TestDailyAggregateReplacesInsteadOfAccumulating(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	date := day(2025, time.September, 13)

	batch := []RawSaleItem{
		saleItem("037955", 1, "000002", "010984", "P", "100.00", date),
	}
	if _, err := ImportSaleLines(ctx, db, 0, batch); err != nil {
		t.Fatalf("import: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, _, _, err := RecomputeDailyAggregates(ctx, db, []string{"000002"}, []time.Time{date}); err != nil {
			t.Fatalf("recompute %d: %v", i, err)
		}
	}

	var agg models.DailyAggregate
	if err := db.Where("store_code = ? AND sale_date = ?", "000002", date).Take(&agg).Error; err != nil {
		t.Fatalf("load aggregate: %v", err)
	}
	if !agg.Total.Equal(dec("100.00")) {
		t.Fatalf("total = %s after 3 recomputes, want 100.00", agg.Total)
	}
	if got := countRows(t, db, &models.DailyAggregate{}); got != 1 {
		t.Fatalf("aggregate rows = %d, want 1", got)
	}
}

func TestDailyAggregateFailedUnitIsCountedAndLogged(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	date := day(2025, time.September, 13)

	hook := logtest.NewLocal(config.GetLogger())
	defer hook.Reset()

	// Dropping the target table makes every upsert a per-unit failure while
	// the sale-line read still succeeds.
	if err := db.Migrator().DropTable(&models.DailyAggregate{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	created, updated, failed, err := RecomputeDailyAggregates(ctx, db, []string{"000002"}, []time.Time{date})
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if created != 0 || updated != 0 || failed != 1 {
		t.Fatalf("created=%d updated=%d failed=%d, want 0/0/1", created, updated, failed)
	}

	logged := false
	for _, entry := range hook.AllEntries() {
		if entry.Data["funcName"] == "RecomputeDailyAggregates" && entry.Data["data"] == "000002" {
			logged = true
		}
	}
	if !logged {
		t.Fatal("failed unit was not logged")
	}
}

func TestMonthlyRollupMatchesDailySum(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedDaily(t, db, "000001", day(2025, time.September, 1), "100.00")
	seedDaily(t, db, "000001", day(2025, time.September, 15), "250.50")
	seedDaily(t, db, "000001", day(2025, time.September, 30), "149.50")
	// Neighboring month must not leak in.
	seedDaily(t, db, "000001", day(2025, time.October, 1), "999.00")

	month := utils.YearMonth{Year: 2025, Month: time.September}
	created, err := RollupMonth(ctx, db, "000001", month)
	if err != nil {
		t.Fatalf("rollup: %v", err)
	}
	if !created {
		t.Fatalf("first rollup should create the row")
	}

	var agg models.MonthlyAggregate
	if err := db.Where("store_code = ? AND year = ? AND month = ?", "000001", 2025, 9).Take(&agg).Error; err != nil {
		t.Fatalf("load monthly: %v", err)
	}
	if !agg.Total.Equal(dec("500.00")) {
		t.Fatalf("monthly total = %s, want 500.00", agg.Total)
	}
}

func TestMonthlyRollupUpsertsNeverDuplicates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedDaily(t, db, "000001", day(2025, time.September, 10), "80.00")

	month := utils.YearMonth{Year: 2025, Month: time.September}
	for i := 0; i < 5; i++ {
		created, err := RollupMonth(ctx, db, "000001", month)
		if err != nil {
			t.Fatalf("rollup %d: %v", i, err)
		}
		if i == 0 && !created {
			t.Fatalf("run 1 should create")
		}
		if i > 0 && created {
			t.Fatalf("run %d should update, not create", i+1)
		}
	}

	if got := countRows(t, db, &models.MonthlyAggregate{}); got != 1 {
		t.Fatalf("monthly rows = %d, want exactly 1", got)
	}
}

func TestYearlyRollupSumsTwelveMonths(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	expected := decimal.Zero
	for m := 1; m <= 12; m++ {
		total := dec("100.00").Mul(decimal.NewFromInt(int64(m)))
		expected = expected.Add(total)
		row := models.MonthlyAggregate{StoreCode: "000001", Year: 2025, Month: m, Total: total}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("seed month %d: %v", m, err)
		}
	}
	// Another store and another year stay out of the sum.
	if err := db.Create(&models.MonthlyAggregate{StoreCode: "000009", Year: 2025, Month: 1, Total: dec("77.00")}).Error; err != nil {
		t.Fatalf("seed other store: %v", err)
	}
	if err := db.Create(&models.MonthlyAggregate{StoreCode: "000001", Year: 2024, Month: 12, Total: dec("55.00")}).Error; err != nil {
		t.Fatalf("seed other year: %v", err)
	}

	if _, err := RollupYear(ctx, db, "000001", 2025); err != nil {
		t.Fatalf("rollup: %v", err)
	}

	var agg models.YearlyAggregate
	if err := db.Where("store_code = ? AND year = ?", "000001", 2025).Take(&agg).Error; err != nil {
		t.Fatalf("load yearly: %v", err)
	}
	if !agg.Total.Equal(expected) {
		t.Fatalf("yearly total = %s, want %s", agg.Total, expected)
	}

	// Re-roll: still one row.
	if _, err := RollupYear(ctx, db, "000001", 2025); err != nil {
		t.Fatalf("second rollup: %v", err)
	}
	var count int64
	if err := db.Model(&models.YearlyAggregate{}).Where("store_code = ?", "000001").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("yearly rows = %d, want 1", count)
	}
}
