package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSafeDiv(t *testing.T) {
	tests := []struct {
		name     string
		num      string
		den      string
		expected string
	}{
		{"normal division", "35", "20", "1.75"},
		{"zero denominator", "35", "0", "0"},
		{"zero numerator", "0", "10", "0"},
		{"negative gain", "-15", "10", "-1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			num, _ := decimal.NewFromString(tt.num)
			den, _ := decimal.NewFromString(tt.den)
			expected, _ := decimal.NewFromString(tt.expected)
			if result := SafeDiv(num, den); !result.Equal(expected) {
				t.Fatalf("expected %s, got %s", expected, result)
			}
		})
	}
}

func TestSafeDivDays(t *testing.T) {
	gain, _ := decimal.NewFromString("20")
	if result := SafeDivDays(gain, 10); !result.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected 2, got %s", result)
	}
	if result := SafeDivDays(gain, 0); !result.IsZero() {
		t.Fatalf("expected zero on a zero day delta, got %s", result)
	}
	if result := SafeDivDays(gain, -3); !result.IsZero() {
		t.Fatalf("expected zero on a negative day delta, got %s", result)
	}
}

func TestSafeDivNullable(t *testing.T) {
	num, _ := decimal.NewFromString("3")
	two, _ := decimal.NewFromString("2")
	zero := decimal.Zero
	negative, _ := decimal.NewFromString("-1")

	if result := SafeDivNullable(num, &two); result == nil || !result.Equal(decimal.NewFromFloat(1.5)) {
		t.Fatalf("expected 1.5, got %v", result)
	}
	if result := SafeDivNullable(num, nil); result != nil {
		t.Fatalf("expected nil on a nil denominator, got %s", result)
	}
	if result := SafeDivNullable(num, &zero); result != nil {
		t.Fatalf("expected nil on a zero denominator, got %s", result)
	}
	if result := SafeDivNullable(num, &negative); result != nil {
		t.Fatalf("expected nil on a negative denominator, got %s", result)
	}
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if days := DaysBetween(start, start.AddDate(0, 0, 31)); days != 31 {
		t.Fatalf("expected 31, got %d", days)
	}
	if days := DaysBetween(start, start); days != 0 {
		t.Fatalf("expected 0, got %d", days)
	}
	if days := DaysBetween(start.AddDate(0, 0, 5), start); days != -5 {
		t.Fatalf("expected -5, got %d", days)
	}
	// time-of-day never shifts the count
	noon := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	nextMorning := time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC)
	if days := DaysBetween(noon, nextMorning); days != 1 {
		t.Fatalf("expected 1, got %d", days)
	}
}

func TestTruncateToDay(t *testing.T) {
	stamp := time.Date(2026, 3, 1, 18, 45, 12, 999, time.UTC)
	truncated := TruncateToDay(stamp)
	if truncated.Hour() != 0 || truncated.Minute() != 0 || truncated.Second() != 0 {
		t.Fatalf("expected midnight, got %v", truncated)
	}
	if truncated.Day() != 1 || truncated.Month() != 3 {
		t.Fatalf("date component must survive, got %v", truncated)
	}
}
