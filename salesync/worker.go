package salesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/varejodata/salesync_backend/config"
	"github.com/varejodata/salesync_backend/models"
	"github.com/varejodata/salesync_backend/utils"
	"gorm.io/gorm"
)

// sourceFactory builds the SaleSource a worker run fetches from. Tests
// swap it for a fake.
var sourceFactory = NewHTTPSource

// runStats is what gets persisted into SyncRun.StatsJSON.
type runStats struct {
	Daily   *DailySyncResult `json:"daily,omitempty"`
	Monthly *RollupResult    `json:"monthly,omitempty"`
	Yearly  []RollupResult   `json:"yearly,omitempty"`
}

func (s runStats) errorCount() int {
	count := 0
	if s.Daily != nil {
		count += s.Daily.Skipped + s.Daily.FailedUnits
	}
	if s.Monthly != nil {
		count += s.Monthly.FailedUnits
	}
	for _, y := range s.Yearly {
		count += y.FailedUnits
	}
	return count
}

// processSyncRun executes one queued run. The run row is the only shared
// state: operations themselves keep no checkpoint, so a redelivered message
// for a finished run is a no-op.
func processSyncRun(ctx context.Context, payload SyncPubSubPayload) error {
	if payload.RunId == 0 {
		return errors.New("invalid payload")
	}
	db := config.GetDB().WithContext(ctx)

	var run models.SyncRun
	if err := db.Where("id = ?", payload.RunId).Take(&run).Error; err != nil {
		return err
	}
	if run.Status == models.SyncRunStatusSuccess || run.Status == models.SyncRunStatusFailed || run.Status == models.SyncRunStatusPartial {
		return nil
	}

	now := time.Now()
	startedAt := run.StartedAt
	if startedAt == nil {
		startedAt = &now
	}
	if err := db.Model(&run).Updates(map[string]interface{}{
		"status":     models.SyncRunStatusRunning,
		"started_at": startedAt,
	}).Error; err != nil {
		return err
	}

	stats, runErr := executeRun(ctx, db, run)

	finishedAt := time.Now()
	status := models.SyncRunStatusSuccess
	errorCount := stats.errorCount()
	if runErr != nil {
		status = models.SyncRunStatusFailed
	} else if errorCount > 0 {
		status = models.SyncRunStatusPartial
	}

	statsJSON, _ := json.Marshal(stats)
	if err := db.Model(&run).Updates(map[string]interface{}{
		"status":      status,
		"finished_at": finishedAt,
		"duration_ms": finishedAt.Sub(*startedAt).Milliseconds(),
		"error_count": errorCount,
		"stats_json":  statsJSON,
	}).Error; err != nil {
		return err
	}
	return runErr
}

func executeRun(ctx context.Context, db *gorm.DB, run models.SyncRun) (runStats, error) {
	switch run.Kind {
	case models.SyncKindDaily:
		return executeDailyRun(ctx, db, run)
	case models.SyncKindMonthly:
		return executeMonthlyRun(ctx, db, run)
	case models.SyncKindYearly:
		return executeYearlyRun(ctx, db, run)
	default:
		return runStats{}, fmt.Errorf("unknown sync kind %q", run.Kind)
	}
}

func executeDailyRun(ctx context.Context, db *gorm.DB, run models.SyncRun) (runStats, error) {
	var stats runStats

	start, err := utils.ParseDate(run.RangeStart)
	if err != nil {
		return stats, fmt.Errorf("parse range start: %w", err)
	}
	end, err := utils.ParseDate(run.RangeEnd)
	if err != nil {
		return stats, fmt.Errorf("parse range end: %w", err)
	}

	source, err := sourceFactory()
	if err != nil {
		return stats, err
	}

	daily, err := SyncDaily(ctx, db, source, run.ID, start, end)
	if err != nil {
		return stats, err
	}
	stats.Daily = &daily

	if !run.Cascade {
		return stats, nil
	}

	// The scheduled flow keeps a fixed ordering for overlapping periods:
	// daily first, then the months it touched, then their years.
	monthly, err := SyncMonthly(ctx, db, start, end)
	if err != nil {
		return stats, err
	}
	stats.Monthly = &monthly

	for _, year := range distinctYears(start, end) {
		yearly, err := SyncYearly(ctx, db, year)
		if err != nil {
			return stats, err
		}
		stats.Yearly = append(stats.Yearly, yearly)
	}
	return stats, nil
}

func executeMonthlyRun(ctx context.Context, db *gorm.DB, run models.SyncRun) (runStats, error) {
	var stats runStats

	startMonth, err := utils.ParseYearMonth(run.RangeStart)
	if err != nil {
		return stats, fmt.Errorf("parse range start: %w", err)
	}
	endMonth, err := utils.ParseYearMonth(run.RangeEnd)
	if err != nil {
		return stats, fmt.Errorf("parse range end: %w", err)
	}

	start := startMonth.FirstDay()
	end := endMonth.NextMonth().AddDate(0, 0, -1)

	monthly, err := SyncMonthly(ctx, db, start, end)
	if err != nil {
		return stats, err
	}
	stats.Monthly = &monthly

	if !run.Cascade {
		return stats, nil
	}
	for _, year := range distinctYears(start, end) {
		yearly, err := SyncYearly(ctx, db, year)
		if err != nil {
			return stats, err
		}
		stats.Yearly = append(stats.Yearly, yearly)
	}
	return stats, nil
}

func executeYearlyRun(ctx context.Context, db *gorm.DB, run models.SyncRun) (runStats, error) {
	var stats runStats

	year, err := strconv.Atoi(run.RangeStart)
	if err != nil {
		return stats, fmt.Errorf("parse year: %w", err)
	}

	yearly, err := SyncYearly(ctx, db, year)
	if err != nil {
		return stats, err
	}
	stats.Yearly = append(stats.Yearly, yearly)
	return stats, nil
}

func distinctYears(start, end time.Time) []int {
	var years []int
	for y := start.Year(); y <= end.Year(); y++ {
		years = append(years, y)
	}
	return years
}
