package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/varejodata/salesync_backend/config"
	"github.com/varejodata/salesync_backend/models"
	"github.com/varejodata/salesync_backend/salesync"
	"github.com/varejodata/salesync_backend/utils"
)

// Operator tool: recompute every aggregate tier for an explicit date range
// without touching the upstream source. Useful after a manual data fix.
func main() {
	from := flag.String("from", "", "Start date (YYYY-MM-DD). Required.")
	to := flag.String("to", "", "End date (YYYY-MM-DD). Required.")
	store := flag.String("store", "", "Optional: restrict to one store code.")
	flag.Parse()

	start, err := utils.ParseDate(strings.TrimSpace(*from))
	if err != nil {
		fmt.Fprintln(os.Stderr, "-from must be YYYY-MM-DD")
		os.Exit(1)
	}
	end, err := utils.ParseDate(strings.TrimSpace(*to))
	if err != nil {
		fmt.Fprintln(os.Stderr, "-to must be YYYY-MM-DD")
		os.Exit(1)
	}
	if start.After(end) {
		fmt.Fprintln(os.Stderr, "-from must not be after -to")
		os.Exit(1)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}

	// Ensure schema is up-to-date.
	models.MigrateTable()

	var stores []string
	if strings.TrimSpace(*store) != "" {
		stores = []string{strings.TrimSpace(*store)}
	} else {
		if err := db.WithContext(ctx).
			Model(&models.Store{}).
			Where("active = ?", true).
			Order("code").
			Pluck("code", &stores).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to list stores: %v\n", err)
			os.Exit(1)
		}
	}
	if len(stores) == 0 {
		fmt.Fprintln(os.Stderr, "no stores found to backfill")
		return
	}

	fmt.Printf("Recomputing aggregates stores=%d from=%s to=%s\n",
		len(stores), start.Format(utils.DateLayout), end.Format(utils.DateLayout))

	created, updated, failed, err := salesync.RecomputeDailyAggregates(ctx, db, stores, utils.DaysBetween(start, end))
	if err != nil {
		fmt.Fprintf(os.Stderr, "daily recompute failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("daily: created=%d updated=%d failed=%d\n", created, updated, failed)

	for _, month := range utils.MonthsBetween(start, end) {
		for _, storeCode := range stores {
			if _, err := salesync.RollupMonth(ctx, db, storeCode, month); err != nil {
				fmt.Fprintf(os.Stderr, "store %s month %s rollup failed: %v\n", storeCode, month, err)
			}
		}
	}

	for year := start.Year(); year <= end.Year(); year++ {
		for _, storeCode := range stores {
			if _, err := salesync.RollupYear(ctx, db, storeCode, year); err != nil {
				fmt.Fprintf(os.Stderr, "store %s year %d rollup failed: %v\n", storeCode, year, err)
			}
		}
	}

	fmt.Println("Backfill complete")
}
