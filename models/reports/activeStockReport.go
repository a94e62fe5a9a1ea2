package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/herdlink/livestock_backend/models"
	"github.com/herdlink/livestock_backend/utils"
	"github.com/herdlink/livestock_backend/workflow"
	"github.com/xuri/excelize/v2"
)

// GetActiveStockReport computes the farm-wide active stock summary from a
// single batched read of the herd's events.
func GetActiveStockReport(ctx context.Context, farmId int) (*workflow.ActiveStockSummary, error) {
	animals, err := models.ListActiveAnimals(ctx, farmId)
	if err != nil {
		return nil, err
	}
	snapshots, err := workflow.FetchSnapshots(ctx, animals)
	if err != nil {
		return nil, err
	}
	ref, err := workflow.FetchRefData(ctx, farmId)
	if err != nil {
		return nil, err
	}
	return workflow.ComputeActiveStockSummary(snapshots, ref, time.Now())
}

// GetActiveStockReportAsOf evaluates the herd at a past date: events after
// the date are dropped, so animals sold later still count as active and
// animals that entered later are excluded. Feeds the daily summary rebuild.
func GetActiveStockReportAsOf(ctx context.Context, farmId int, asOf time.Time) (*workflow.ActiveStockSummary, error) {
	animals, err := models.ListAnimals(ctx, farmId, nil, nil)
	if err != nil {
		return nil, err
	}
	snapshots, err := workflow.FetchSnapshots(ctx, animals)
	if err != nil {
		return nil, err
	}
	restricted := make([]*workflow.AnimalEvents, 0, len(snapshots))
	for _, snapshot := range snapshots {
		if past := snapshot.AsOf(asOf); past != nil {
			restricted = append(restricted, past)
		}
	}
	ref, err := workflow.FetchRefData(ctx, farmId)
	if err != nil {
		return nil, err
	}
	return workflow.ComputeActiveStockSummary(restricted, ref, asOf)
}

// ExportActiveStockExcel renders the active stock summary as a workbook,
// one row per animal plus a header.
func ExportActiveStockExcel(ctx context.Context, farmId int) (*excelize.File, error) {
	summary, err := GetActiveStockReport(ctx, farmId)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []string{
		"EarTag", "Lot", "Sex", "CurrentAgeMonths",
		"LastWeightKg", "LastWeightingDate", "AverageDailyGainKg",
		"ForecastedWeightKg", "DaysOnFarm", "Location", "Sublocation", "DietType",
	}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue("Sheet1", cell, header)
	}

	for i, animal := range summary.Animals {
		row := i + 2
		forecast := ""
		if animal.ForecastedCurrentWeightKg != nil {
			forecast = animal.ForecastedCurrentWeightKg.String()
		}
		values := []interface{}{
			animal.EarTag,
			animal.Lot,
			string(animal.Sex),
			animal.CurrentAgeMonths.String(),
			animal.LastWeightKg.String(),
			utils.FormatDate(animal.LastWeightingDate),
			animal.AverageDailyGainKg.String(),
			forecast,
			animal.DaysOnFarm,
			utils.DereferencePtr(animal.CurrentLocationName, ""),
			utils.DereferencePtr(animal.CurrentSublocationName, ""),
			utils.DereferencePtr(animal.CurrentDietType, ""),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			f.SetCellValue("Sheet1", cell, value)
		}
	}

	f.SetCellValue("Sheet1", fmt.Sprintf("A%d", len(summary.Animals)+3),
		fmt.Sprintf("Total: %d (M %d / F %d)",
			summary.Summary.AnimalCount, summary.Summary.Males, summary.Summary.Females))

	return f, nil
}
