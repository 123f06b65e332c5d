package salesync

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/varejodata/salesync_backend/config"
	"github.com/varejodata/salesync_backend/models"
	"github.com/varejodata/salesync_backend/utils"
	"gorm.io/gorm"
)

var (
	ErrInvalidRange = errors.New("start date must not be after end date")
	ErrInvalidYear  = errors.New("year is out of range")
)

// DailySyncResult is the outcome of one SyncDaily call. Received/Inserted/
// Skipped count sale lines; Created/Updated count daily aggregate rows.
type DailySyncResult struct {
	Received        int       `json:"received"`
	Inserted        int       `json:"inserted"`
	Skipped         int       `json:"skipped"`
	Created         int       `json:"created"`
	Updated         int       `json:"updated"`
	StoresProcessed int       `json:"storesProcessed"`
	FailedUnits     int       `json:"failedUnits"`
	ProcessedAt     time.Time `json:"processedAt"`
}

// RollupResult is the outcome of one monthly or yearly rollup call.
// MonthsProcessed stays zero for yearly runs.
type RollupResult struct {
	Created         int       `json:"created"`
	Updated         int       `json:"updated"`
	StoresProcessed int       `json:"storesProcessed"`
	MonthsProcessed int       `json:"monthsProcessed,omitempty"`
	FailedUnits     int       `json:"failedUnits"`
	ProcessedAt     time.Time `json:"processedAt"`
}

// SyncDaily pulls every sale item in [start, end] from the source, registers
// unseen products, imports unseen lines and recomputes the daily aggregates
// for the window. The whole call is a recomputation of the requested range:
// no checkpoint is read or written, so re-supplying any historical window is
// always safe.
//
// runID associates skipped-item records with a run history row; zero means
// the caller keeps no history (library use, tests).
func SyncDaily(ctx context.Context, db *gorm.DB, source SaleSource, runID uint, start, end time.Time) (DailySyncResult, error) {
	var result DailySyncResult
	if start.IsZero() || end.IsZero() {
		return result, ErrInvalidRange
	}
	start = utils.DateOnly(start)
	end = utils.DateOnly(end)
	if start.After(end) {
		return result, ErrInvalidRange
	}

	items, err := source.FetchSaleItems(ctx, start, end)
	if err != nil {
		// Upstream unreachable is systemic: abort with no partial result.
		return result, err
	}

	if _, err := ResolveProducts(ctx, db, items); err != nil {
		return result, err
	}
	if _, err := RefreshProductDescriptions(ctx, db, items); err != nil {
		return result, err
	}

	imported, err := ImportSaleLines(ctx, db, runID, items)
	if err != nil {
		return result, err
	}
	result.Received = imported.Received
	result.Inserted = imported.Inserted
	result.Skipped = imported.Skipped

	stores, err := storeUniverse(ctx, db, items)
	if err != nil {
		return result, err
	}

	created, updated, failed, err := RecomputeDailyAggregates(ctx, db, stores, utils.DaysBetween(start, end))
	if err != nil {
		return result, err
	}
	result.Created = created
	result.Updated = updated
	result.FailedUnits = failed
	result.StoresProcessed = len(stores)
	result.ProcessedAt = time.Now().UTC()

	config.GetLogger().WithFields(logrus.Fields{
		"module":   "salesync",
		"kind":     models.SyncKindDaily,
		"range":    start.Format(utils.DateLayout) + ".." + end.Format(utils.DateLayout),
		"received": result.Received,
		"inserted": result.Inserted,
		"skipped":  result.Skipped,
		"stores":   result.StoresProcessed,
	}).Info("daily sync finished")
	return result, nil
}

// SyncMonthly re-rolls every (store, month) unit covered by [start, end].
// Units are independent: a failed one is logged and counted while the rest
// proceed, each inside its own transaction.
func SyncMonthly(ctx context.Context, db *gorm.DB, start, end time.Time) (RollupResult, error) {
	var result RollupResult
	if start.IsZero() || end.IsZero() || start.After(end) {
		return result, ErrInvalidRange
	}

	months := utils.MonthsBetween(start, end)
	stores, err := storesWithDailyData(ctx, db, start, end)
	if err != nil {
		return result, err
	}

	logger := config.GetLogger()
	for _, month := range months {
		for _, store := range stores {
			created, err := RollupMonth(ctx, db, store, month)
			if err != nil {
				result.FailedUnits++
				config.LogError(logger, "salesync", "SyncMonthly", month.String(), store, err)
				continue
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
	}
	result.StoresProcessed = len(stores)
	result.MonthsProcessed = len(months)
	result.ProcessedAt = time.Now().UTC()
	return result, nil
}

// SyncYearly re-rolls every store's yearly total for one year from the
// monthly tier.
func SyncYearly(ctx context.Context, db *gorm.DB, year int) (RollupResult, error) {
	var result RollupResult
	if year < 2000 || year > 2200 {
		return result, ErrInvalidYear
	}

	stores, err := storesWithMonthlyData(ctx, db, year)
	if err != nil {
		return result, err
	}

	logger := config.GetLogger()
	for _, store := range stores {
		created, err := RollupYear(ctx, db, store, year)
		if err != nil {
			result.FailedUnits++
			config.LogError(logger, "salesync", "SyncYearly", "rollup", store, err)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	result.StoresProcessed = len(stores)
	result.ProcessedAt = time.Now().UTC()
	return result, nil
}

// storeUniverse is the store set daily aggregation covers: the active rows
// of the stores table (so a day with no sales still gets explicit zero
// rows) plus any store code present in the batch but missing from master
// data.
func storeUniverse(ctx context.Context, db *gorm.DB, items []RawSaleItem) ([]string, error) {
	var stores []string
	if err := db.WithContext(ctx).
		Model(&models.Store{}).
		Where("active = ?", true).
		Order("code").
		Pluck("code", &stores).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(stores))
	for _, code := range stores {
		seen[code] = struct{}{}
	}
	for _, item := range items {
		if item.StoreCode == "" {
			continue
		}
		if _, ok := seen[item.StoreCode]; !ok {
			seen[item.StoreCode] = struct{}{}
			stores = append(stores, item.StoreCode)
		}
	}
	return stores, nil
}

// storesWithDailyData is the rollup store set for a monthly window: the
// active master stores plus every store code the daily tier holds inside the
// window. Daily aggregation accepts stores absent from master data, so the
// tier below must always be consulted or their rollup rows would silently go
// missing.
func storesWithDailyData(ctx context.Context, db *gorm.DB, start, end time.Time) ([]string, error) {
	var stores []string
	if err := db.WithContext(ctx).
		Model(&models.Store{}).
		Where("active = ?", true).
		Order("code").
		Pluck("code", &stores).Error; err != nil {
		return nil, err
	}

	months := utils.MonthsBetween(start, end)
	if len(months) == 0 {
		return stores, nil
	}
	first := months[0].FirstDay()
	last := months[len(months)-1].NextMonth()

	var aggregated []string
	if err := db.WithContext(ctx).
		Model(&models.DailyAggregate{}).
		Distinct("store_code").
		Where("sale_date >= ? AND sale_date < ?", first, last).
		Order("store_code").
		Pluck("store_code", &aggregated).Error; err != nil {
		return nil, err
	}
	return mergeStoreCodes(stores, aggregated), nil
}

func storesWithMonthlyData(ctx context.Context, db *gorm.DB, year int) ([]string, error) {
	var stores []string
	if err := db.WithContext(ctx).
		Model(&models.Store{}).
		Where("active = ?", true).
		Order("code").
		Pluck("code", &stores).Error; err != nil {
		return nil, err
	}

	var aggregated []string
	if err := db.WithContext(ctx).
		Model(&models.MonthlyAggregate{}).
		Distinct("store_code").
		Where("year = ?", year).
		Order("store_code").
		Pluck("store_code", &aggregated).Error; err != nil {
		return nil, err
	}
	return mergeStoreCodes(stores, aggregated), nil
}

func mergeStoreCodes(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, code := range base {
		seen[code] = struct{}{}
	}
	for _, code := range extra {
		if _, ok := seen[code]; !ok {
			seen[code] = struct{}{}
			base = append(base, code)
		}
	}
	return base
}
