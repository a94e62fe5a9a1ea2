package workflow

import (
	"sort"
	"time"

	"github.com/herdlink/livestock_backend/models"
	"github.com/herdlink/livestock_backend/utils"
	"github.com/shopspring/decimal"
)

type WeightPoint struct {
	Date     time.Time
	WeightKg decimal.Decimal
}

// WeightHistoryRow is one point of an animal's growth curve. The "grams"
// suffix on the GMD fields is a compatibility artifact; the unit is kg/day.
type WeightHistoryRow struct {
	Date                time.Time       `json:"date"`
	WeightKg            decimal.Decimal `json:"weight_kg"`
	GmdAccumulatedGrams decimal.Decimal `json:"gmd_accumulated_grams"`
	GmdPeriodGrams      decimal.Decimal `json:"gmd_period_grams"`
}

// BuildWeightSeries turns the raw weighings into the canonical series: the
// entry (date, weight) injected as an anchor, exact (date, weight)
// duplicates collapsed, sorted ascending by date with insertion order
// preserved within a day. The result is never empty.
func BuildWeightSeries(animal *models.Animal, weighings []models.Weighing) []WeightPoint {
	points := make([]WeightPoint, 0, len(weighings)+1)
	points = append(points, WeightPoint{
		Date:     utils.TruncateToDay(animal.EntryDate),
		WeightKg: animal.EntryWeight,
	})
	for _, weighing := range weighings {
		points = append(points, WeightPoint{
			Date:     utils.TruncateToDay(weighing.Date),
			WeightKg: weighing.WeightKg,
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	seen := make(map[string]bool, len(points))
	series := make([]WeightPoint, 0, len(points))
	for _, point := range points {
		key := utils.FormatDate(point.Date) + "|" + point.WeightKg.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		series = append(series, point)
	}
	return series
}

// ComputeWeightHistory derives the accumulated and period daily gains for
// every point of the series. Zero day deltas resolve to 0, never an error.
func ComputeWeightHistory(animal *models.Animal, weighings []models.Weighing) []WeightHistoryRow {
	series := BuildWeightSeries(animal, weighings)
	rows := make([]WeightHistoryRow, 0, len(series))
	for i, point := range series {
		accumulated := utils.SafeDivDays(
			point.WeightKg.Sub(series[0].WeightKg),
			utils.DaysBetween(series[0].Date, point.Date),
		)
		period := decimal.Zero
		if i > 0 {
			period = utils.SafeDivDays(
				point.WeightKg.Sub(series[i-1].WeightKg),
				utils.DaysBetween(series[i-1].Date, point.Date),
			)
		}
		rows = append(rows, WeightHistoryRow{
			Date:                point.Date,
			WeightKg:            point.WeightKg.Round(2),
			GmdAccumulatedGrams: accumulated.Round(3),
			GmdPeriodGrams:      period.Round(3),
		})
	}
	return rows
}
