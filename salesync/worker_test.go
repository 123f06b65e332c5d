package salesync

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/varejodata/salesync_backend/config"
	"github.com/varejodata/salesync_backend/models"
)

func withWorkerEnv(t *testing.T, source SaleSource) {
	t.Helper()

	db := newTestDB(t)
	config.SetDB(db)
	t.Cleanup(func() { config.SetDB(nil) })

	previous := sourceFactory
	sourceFactory = func() (SaleSource, error) { return source, nil }
	t.Cleanup(func() { sourceFactory = previous })
}

func TestProcessSyncRunDailyCascade(t *testing.T) {
	date := day(2025, time.September, 13)
	source := &fakeSource{items: []RawSaleItem{
		saleItem("037955", 1, "000002", "010984", "I", "500.00", date),
		saleItem("037956", 1, "000002", "020111", "P", "300.00", date),
	}}
	withWorkerEnv(t, source)
	db := config.GetDB()

	run := models.SyncRun{
		Kind:        models.SyncKindDaily,
		Status:      models.SyncRunStatusQueued,
		TriggeredBy: models.SyncTriggeredScheduled,
		RangeStart:  "2025-09-13",
		RangeEnd:    "2025-09-13",
		Cascade:     true,
	}
	if err := db.Create(&run).Error; err != nil {
		t.Fatalf("create run: %v", err)
	}

	if err := processSyncRun(context.Background(), SyncPubSubPayload{RunId: run.ID}); err != nil {
		t.Fatalf("processSyncRun: %v", err)
	}

	var reloaded models.SyncRun
	if err := db.Take(&reloaded, run.ID).Error; err != nil {
		t.Fatalf("reload run: %v", err)
	}
	if reloaded.Status != models.SyncRunStatusSuccess {
		t.Fatalf("status = %s, want success", reloaded.Status)
	}
	if reloaded.StartedAt == nil || reloaded.FinishedAt == nil {
		t.Fatalf("timestamps missing: %+v", reloaded)
	}

	var stats runStats
	if err := json.Unmarshal(reloaded.StatsJSON, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Daily == nil || stats.Daily.Inserted != 2 {
		t.Fatalf("daily stats = %+v, want 2 inserted", stats.Daily)
	}
	if stats.Monthly == nil || len(stats.Yearly) != 1 {
		t.Fatalf("cascade stats incomplete: %+v", stats)
	}

	// Cascade reached both rollup tiers.
	if got := countRows(t, db, &models.MonthlyAggregate{}); got != 1 {
		t.Fatalf("monthly rows = %d, want 1", got)
	}
	if got := countRows(t, db, &models.YearlyAggregate{}); got != 1 {
		t.Fatalf("yearly rows = %d, want 1", got)
	}
}

func TestProcessSyncRunSkipsFinishedRun(t *testing.T) {
	source := &fakeSource{}
	withWorkerEnv(t, source)
	db := config.GetDB()

	run := models.SyncRun{
		Kind:       models.SyncKindDaily,
		Status:     models.SyncRunStatusSuccess,
		RangeStart: "2025-09-13",
		RangeEnd:   "2025-09-13",
	}
	if err := db.Create(&run).Error; err != nil {
		t.Fatalf("create run: %v", err)
	}

	if err := processSyncRun(context.Background(), SyncPubSubPayload{RunId: run.ID}); err != nil {
		t.Fatalf("processSyncRun: %v", err)
	}
	if source.calls != 0 {
		t.Fatalf("finished run touched the source: %d calls", source.calls)
	}
}

func TestProcessSyncRunMarksFailureOnBadRange(t *testing.T) {
	withWorkerEnv(t, &fakeSource{})
	db := config.GetDB()

	run := models.SyncRun{
		Kind:       models.SyncKindDaily,
		Status:     models.SyncRunStatusQueued,
		RangeStart: "13/09/2025",
		RangeEnd:   "2025-09-13",
	}
	if err := db.Create(&run).Error; err != nil {
		t.Fatalf("create run: %v", err)
	}

	if err := processSyncRun(context.Background(), SyncPubSubPayload{RunId: run.ID}); err == nil {
		t.Fatal("expected parse error to surface")
	}

	var reloaded models.SyncRun
	if err := db.Take(&reloaded, run.ID).Error; err != nil {
		t.Fatalf("reload run: %v", err)
	}
	if reloaded.Status != models.SyncRunStatusFailed {
		t.Fatalf("status = %s, want failed", reloaded.Status)
	}
}

func TestProcessSyncRunRejectsEmptyPayload(t *testing.T) {
	if err := processSyncRun(context.Background(), SyncPubSubPayload{}); err == nil {
		t.Fatal("expected invalid payload error")
	}
}
