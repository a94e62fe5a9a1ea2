package workflow

import (
	"time"

	"github.com/herdlink/livestock_backend/utils"
	"github.com/shopspring/decimal"
)

// OverallGmd is the accumulated daily gain across the full series: total
// gain over total days since the first point. 0 when the series has fewer
// than two points or spans zero days.
func OverallGmd(series []WeightPoint) decimal.Decimal {
	if len(series) < 2 {
		return decimal.Zero
	}
	first := series[0]
	last := series[len(series)-1]
	return utils.SafeDivDays(
		last.WeightKg.Sub(first.WeightKg),
		utils.DaysBetween(first.Date, last.Date),
	)
}

// ForecastWeight extrapolates from the last recorded weight at the overall
// gain rate. Only meaningful for active animals; the caller decides whether
// the result is reported at all.
func ForecastWeight(series []WeightPoint, gmd decimal.Decimal, asOf time.Time) decimal.Decimal {
	last := series[len(series)-1]
	days := utils.DaysBetween(last.Date, utils.TruncateToDay(asOf))
	if days < 0 {
		days = 0
	}
	return last.WeightKg.Add(gmd.Mul(decimal.NewFromInt(int64(days))))
}
