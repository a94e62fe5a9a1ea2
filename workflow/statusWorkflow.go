package workflow

import (
	"time"

	"github.com/herdlink/livestock_backend/utils"
	"github.com/shopspring/decimal"
)

// averageMonthDays converts farm days to months; 365.25 / 12.
var averageMonthDays = decimal.NewFromFloat(30.44)

// DaysOnFarm counts whole days from entry to the evaluation date. For sold
// or dead animals the caller passes the terminal date, freezing the count.
func DaysOnFarm(entryDate time.Time, evalDate time.Time) int {
	days := utils.DaysBetween(utils.TruncateToDay(entryDate), utils.TruncateToDay(evalDate))
	if days < 0 {
		return 0
	}
	return days
}

// AgeMonths adds the on-farm time to the age the animal arrived with.
func AgeMonths(entryAge decimal.Decimal, daysOnFarm int) decimal.Decimal {
	return entryAge.Add(decimal.NewFromInt(int64(daysOnFarm)).Div(averageMonthDays))
}
