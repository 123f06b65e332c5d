package salesync

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/varejodata/salesync_backend/models"
	"gorm.io/gorm"
)

// RollupYear recomputes one (store, year) total from the monthly tier and
// upserts it in place. Returns whether the row was created.
func RollupYear(ctx context.Context, db *gorm.DB, storeCode string, year int) (bool, error) {
	var monthlies []models.MonthlyAggregate
	if err := db.WithContext(ctx).
		Where("store_code = ? AND year = ?", storeCode, year).
		Find(&monthlies).Error; err != nil {
		return false, err
	}

	total := decimal.Zero
	for _, month := range monthlies {
		total = total.Add(month.Total)
	}

	createdRow := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.YearlyAggregate
		err := tx.Where("store_code = ? AND year = ?", storeCode, year).
			Take(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			createdRow = true
			return tx.Create(&models.YearlyAggregate{
				StoreCode: storeCode,
				Year:      year,
				Total:     total,
			}).Error
		}

		return tx.Model(&models.YearlyAggregate{}).
			Where("store_code = ? AND year = ?", storeCode, year).
			Update("total", total).Error
	})
	return createdRow, err
}
