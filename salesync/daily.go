package salesync

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/varejodata/salesync_backend/config"
	"github.com/varejodata/salesync_backend/models"
	"github.com/varejodata/salesync_backend/utils"
	"gorm.io/gorm"
)

type channelTotals struct {
	invoiced decimal.Decimal
	pos      decimal.Decimal
	exchange decimal.Decimal
}

func (t channelTotals) grandTotal() decimal.Decimal {
	return t.invoiced.Add(t.pos).Add(t.exchange)
}

// RecomputeDailyAggregates rebuilds the DailyAggregate row for every
// (store, date) combination. Subtotals are always derived fresh from the
// sale lines currently persisted and replace the stored row; running the
// same day twice cannot double anything.
//
// Stores with no lines on a date get an explicit all-zero row, not an
// absent one. Each (store, date) upsert runs in its own transaction so a
// failed unit leaves the others committed.
func RecomputeDailyAggregates(ctx context.Context, db *gorm.DB, storeCodes []string, dates []time.Time) (created, updated, failed int, err error) {
	if len(storeCodes) == 0 || len(dates) == 0 {
		return 0, 0, 0, nil
	}

	for _, date := range dates {
		dayStart := date
		dayEnd := date.AddDate(0, 0, 1)

		var lines []models.SaleLine
		if err := db.WithContext(ctx).
			Where("store_code IN ?", storeCodes).
			Where("sold_at >= ? AND sold_at < ?", dayStart, dayEnd).
			Find(&lines).Error; err != nil {
			return created, updated, failed, err
		}

		totalsByStore := make(map[string]channelTotals, len(storeCodes))
		for _, line := range lines {
			totals := totalsByStore[line.StoreCode]
			switch line.Channel {
			case models.ChannelInvoiced:
				totals.invoiced = totals.invoiced.Add(line.TotalPrice)
			case models.ChannelPOS:
				totals.pos = totals.pos.Add(line.TotalPrice)
			case models.ChannelExchange:
				totals.exchange = totals.exchange.Add(line.TotalPrice)
			}
			totalsByStore[line.StoreCode] = totals
		}

		for _, store := range storeCodes {
			totals := totalsByStore[store]
			wasCreated, upsertErr := upsertDailyAggregate(ctx, db, store, date, totals)
			if upsertErr != nil {
				failed++
				config.LogError(config.GetLogger(), "salesync", "RecomputeDailyAggregates", date.Format(utils.DateLayout), store, upsertErr)
				continue
			}
			if wasCreated {
				created++
			} else {
				updated++
			}
		}
	}
	return created, updated, failed, nil
}

func upsertDailyAggregate(ctx context.Context, db *gorm.DB, storeCode string, date time.Time, totals channelTotals) (bool, error) {
	createdRow := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.DailyAggregate
		err := tx.Where("store_code = ? AND sale_date = ?", storeCode, date).
			Take(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			createdRow = true
			return tx.Create(&models.DailyAggregate{
				StoreCode:     storeCode,
				SaleDate:      date,
				InvoicedTotal: totals.invoiced,
				PosTotal:      totals.pos,
				ExchangeTotal: totals.exchange,
				Total:         totals.grandTotal(),
			}).Error
		}

		// Replace, never accumulate.
		return tx.Model(&models.DailyAggregate{}).
			Where("store_code = ? AND sale_date = ?", storeCode, date).
			Updates(map[string]interface{}{
				"invoiced_total": totals.invoiced,
				"pos_total":      totals.pos,
				"exchange_total": totals.exchange,
				"total":          totals.grandTotal(),
			}).Error
	})
	return createdRow, err
}
