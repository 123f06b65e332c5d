package salesync

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/varejodata/salesync_backend/models"
	"github.com/varejodata/salesync_backend/utils"
	"gorm.io/gorm"
)

// RollupMonth recomputes one (store, month) total from the daily tier and
// upserts it in place. Returns whether the row was created.
func RollupMonth(ctx context.Context, db *gorm.DB, storeCode string, month utils.YearMonth) (bool, error) {
	var dailies []models.DailyAggregate
	if err := db.WithContext(ctx).
		Where("store_code = ?", storeCode).
		Where("sale_date >= ? AND sale_date < ?", month.FirstDay(), month.NextMonth()).
		Find(&dailies).Error; err != nil {
		return false, err
	}

	total := decimal.Zero
	for _, day := range dailies {
		total = total.Add(day.Total)
	}

	createdRow := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.MonthlyAggregate
		err := tx.Where("store_code = ? AND year = ? AND month = ?",
			storeCode, month.Year, int(month.Month)).
			Take(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			createdRow = true
			return tx.Create(&models.MonthlyAggregate{
				StoreCode: storeCode,
				Year:      month.Year,
				Month:     int(month.Month),
				Total:     total,
			}).Error
		}

		return tx.Model(&models.MonthlyAggregate{}).
			Where("store_code = ? AND year = ? AND month = ?",
				storeCode, month.Year, int(month.Month)).
			Update("total", total).Error
	})
	return createdRow, err
}
