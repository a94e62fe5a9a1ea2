package scheduler

import (
	"context"
	"time"

	"github.com/herdlink/livestock_backend/config"
	"github.com/herdlink/livestock_backend/models"
	"github.com/herdlink/livestock_backend/models/reports"
	"github.com/herdlink/livestock_backend/utils"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler owns the recurring herd summary job. One instance per process.
type Scheduler struct {
	cron   *cron.Cron
	logger *logrus.Logger
}

func NewScheduler(logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
	}
}

// Start schedules the daily herd summary rebuild at 00:15, after the day
// has rolled over everywhere the event dates are recorded.
func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc("15 0 * * *", s.rebuildHerdSummaries)
	if err != nil {
		config.LogError(s.logger, "scheduler.go", "Start", "cron.AddFunc", nil, err)
		return
	}
	s.cron.Start()
	s.logger.WithFields(logrus.Fields{"job": "herd-daily-summary"}).Info("scheduler started")
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) rebuildHerdSummaries() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := RebuildHerdSummariesForDate(ctx, time.Now()); err != nil {
		config.LogError(s.logger, "scheduler.go", "rebuildHerdSummaries", "RebuildHerdSummariesForDate", nil, err)
	}
}

// RebuildHerdSummariesForDate recomputes the HerdDailySummary row of every
// farm for one day. The backfill command reuses it over a range.
func RebuildHerdSummariesForDate(ctx context.Context, date time.Time) error {
	farms, err := models.ListFarms(ctx)
	if err != nil {
		return err
	}
	for _, farm := range farms {
		summary, err := reports.GetActiveStockReportAsOf(ctx, farm.ID, date)
		if err != nil {
			return err
		}
		row := &models.HerdDailySummary{
			FarmId:                    farm.ID,
			SummaryDate:               utils.TruncateToDay(date),
			ActiveAnimals:             summary.Summary.AnimalCount,
			Males:                     summary.Summary.Males,
			Females:                   summary.Summary.Females,
			AverageAgeMonths:          summary.Summary.AverageAgeMonths,
			AverageGmdKg:              summary.Summary.AverageGmdKg,
			AverageForecastedWeightKg: summary.Summary.AverageForecastedWeightKg,
		}
		if err := models.UpsertHerdDailySummary(ctx, row); err != nil {
			return err
		}
	}
	return nil
}
