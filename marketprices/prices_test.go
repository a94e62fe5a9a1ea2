package marketprices

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const sampleCsv = `date,price_kg
2025-01-01,18.50
2025-02-01,19.10
2025-03-01,18.90
`

func mustLoad(t *testing.T) *PriceTable {
	t.Helper()
	table, err := LoadFromReader(strings.NewReader(sampleCsv))
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestLoadFromReader_SkipsHeaderAndSorts(t *testing.T) {
	table := mustLoad(t)
	first, last := table.Span()
	if !first.Equal(date(2025, 1, 1)) || !last.Equal(date(2025, 3, 1)) {
		t.Fatalf("unexpected span %v .. %v", first, last)
	}
}

func TestLoadFromReader_EmptyTableIsAnError(t *testing.T) {
	if _, err := LoadFromReader(strings.NewReader("date,price_kg\n")); err == nil {
		t.Fatal("expected an error for an empty table")
	}
}

func TestClosestPrice(t *testing.T) {
	table := mustLoad(t)
	tests := []struct {
		name     string
		date     time.Time
		expected string
	}{
		{"exact match", date(2025, 2, 1), "19.10"},
		{"before the first point", date(2024, 11, 15), "18.50"},
		{"after the last point", date(2025, 6, 1), "18.90"},
		{"nearer the earlier point", date(2025, 1, 10), "18.50"},
		{"nearer the later point", date(2025, 1, 25), "19.10"},
		{"midpoint prefers earlier", date(2025, 2, 15), "19.10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected, _ := decimal.NewFromString(tt.expected)
			if price := table.ClosestPrice(tt.date); !price.Equal(expected) {
				t.Fatalf("expected %s, got %s", expected, price)
			}
		})
	}
}
