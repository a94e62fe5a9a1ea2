package marketprices

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"sort"
	"time"

	"github.com/herdlink/livestock_backend/utils"
	"github.com/shopspring/decimal"
)

// PriceTable is an explicit load-once cache of historical per-kilogram
// market prices. Load it once at startup and share the instance; lookups
// never mutate it, so concurrent reads are safe. It belongs to the demo
// seeding tooling only and is never consulted by the KPI engine.
type PriceTable struct {
	points []pricePoint
}

type pricePoint struct {
	date    time.Time
	priceKg decimal.Decimal
}

// Load reads a CSV of (date, price_kg) rows, header optional.
func Load(path string) (*PriceTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return LoadFromReader(file)
}

func LoadFromReader(r io.Reader) (*PriceTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2

	var points []pricePoint
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		date, err := utils.ParseDate(record[0])
		if err != nil {
			// tolerate a single header row
			if len(points) == 0 {
				continue
			}
			return nil, err
		}
		price, err := decimal.NewFromString(record[1])
		if err != nil {
			return nil, err
		}
		points = append(points, pricePoint{date: utils.TruncateToDay(date), priceKg: price})
	}
	if len(points) == 0 {
		return nil, errors.New("price table is empty")
	}

	sort.Slice(points, func(i, j int) bool { return points[i].date.Before(points[j].date) })
	return &PriceTable{points: points}, nil
}

// ClosestPrice returns the price of the point nearest to date, preferring
// the earlier one on an exact midpoint.
func (t *PriceTable) ClosestPrice(date time.Time) decimal.Decimal {
	day := utils.TruncateToDay(date)
	idx := sort.Search(len(t.points), func(i int) bool {
		return !t.points[i].date.Before(day)
	})
	if idx == 0 {
		return t.points[0].priceKg
	}
	if idx == len(t.points) {
		return t.points[len(t.points)-1].priceKg
	}
	before := t.points[idx-1]
	after := t.points[idx]
	if day.Sub(before.date) <= after.date.Sub(day) {
		return before.priceKg
	}
	return after.priceKg
}

// Span reports the first and last dates covered by the table.
func (t *PriceTable) Span() (time.Time, time.Time) {
	return t.points[0].date, t.points[len(t.points)-1].date
}
