package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/herdlink/livestock_backend/config"
	"github.com/herdlink/livestock_backend/models"
	"github.com/herdlink/livestock_backend/scheduler"
	"github.com/herdlink/livestock_backend/utils"
)

// Rebuilds HerdDailySummary rows over a date range. The daily cron job
// covers the normal case; this command repairs gaps after downtime or
// after historical events were loaded.
func main() {
	from := flag.String("from", "", "start date (YYYY-MM-DD), required")
	to := flag.String("to", "", "end date (YYYY-MM-DD), defaults to today")
	flag.Parse()

	if *from == "" {
		fmt.Fprintln(os.Stderr, "-from is required")
		os.Exit(1)
	}
	startDate, err := utils.ParseDate(*from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -from: %v\n", err)
		os.Exit(1)
	}
	endDate := utils.TruncateToDay(time.Now())
	if *to != "" {
		endDate, err = utils.ParseDate(*to)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -to: %v\n", err)
			os.Exit(1)
		}
	}
	if endDate.Before(startDate) {
		fmt.Fprintln(os.Stderr, "-to is before -from")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	if err := models.MigrateTable(); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	days := 0
	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		if err := scheduler.RebuildHerdSummariesForDate(ctx, day); err != nil {
			fmt.Fprintf(os.Stderr, "backfill failed at %s: %v\n", utils.FormatDate(day), err)
			os.Exit(1)
		}
		days++
	}
	fmt.Printf("backfilled %d day(s) from %s to %s\n", days, utils.FormatDate(startDate), utils.FormatDate(endDate))
}
