package models

import (
	"log"

	"github.com/varejodata/salesync_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Store{},
		&Product{}, &SaleLine{},
		&DailyAggregate{}, &MonthlyAggregate{}, &YearlyAggregate{},
		&SyncRun{}, &SyncItemError{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
