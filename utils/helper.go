package utils

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// SafeDiv divides num by den and returns zero when the denominator is zero.
// All GMD-type ratios in the KPI engine go through here instead of guarding
// per call site.
func SafeDiv(num decimal.Decimal, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}

// SafeDivDays divides num by a day count, zero when days <= 0.
func SafeDivDays(num decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	return num.Div(decimal.NewFromInt(int64(days)))
}

// SafeDivNullable divides num by den and returns nil when the denominator is
// nil, zero or negative. Used for KPIs that are reported as "not applicable"
// rather than zero (capacity rates).
func SafeDivNullable(num decimal.Decimal, den *decimal.Decimal) *decimal.Decimal {
	if den == nil || !den.IsPositive() {
		return nil
	}
	result := num.Div(*den)
	return &result
}

// TruncateToDay drops the time-of-day component. Event dates are stored and
// compared at day granularity.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from a to b (negative when b is before a).
func DaysBetween(a time.Time, b time.Time) int {
	return int(TruncateToDay(b).Sub(TruncateToDay(a)).Hours() / 24)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func IntPtr(i int) *int {
	return &i
}

func StringPtr(s string) *string {
	return &s
}

func DereferencePtr[T any](ptr *T, def T) T {
	if ptr == nil {
		return def
	}
	return *ptr
}

func ProcessValidationErrors(err error) map[string]string {

	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}
