package workflow

import (
	"testing"

	"github.com/herdlink/livestock_backend/models"
	"github.com/shopspring/decimal"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func testAnimal(id int, entryDayOffset int, entryWeight string) *models.Animal {
	return &models.Animal{
		ID:          id,
		FarmId:      1,
		EarTag:      "T100",
		Lot:         "L1",
		EntryDate:   testDay(entryDayOffset),
		EntryWeight: dec(entryWeight),
		Sex:         models.SexMale,
		EntryAge:    dec("8"),
	}
}

func TestBuildWeightSeries_InjectsEntryAnchor(t *testing.T) {
	animal := testAnimal(1, 0, "200")
	series := BuildWeightSeries(animal, []models.Weighing{
		{ID: 1, AnimalId: 1, Date: testDay(10), WeightKg: dec("220")},
	})

	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}
	if !series[0].Date.Equal(testDay(0)) || !series[0].WeightKg.Equal(dec("200")) {
		t.Fatalf("expected the entry anchor first, got %v %s", series[0].Date, series[0].WeightKg)
	}
}

func TestBuildWeightSeries_DeduplicatesEntryWeighing(t *testing.T) {
	// An explicit weighing that repeats the entry date and weight collapses
	// into the anchor.
	animal := testAnimal(1, 0, "200")
	series := BuildWeightSeries(animal, []models.Weighing{
		{ID: 1, AnimalId: 1, Date: testDay(0), WeightKg: dec("200")},
		{ID: 2, AnimalId: 1, Date: testDay(10), WeightKg: dec("220")},
	})

	if len(series) != 2 {
		t.Fatalf("expected the duplicate anchor to collapse, got %d points", len(series))
	}
}

func TestComputeWeightHistory_FirstPointAccumulatedIsZero(t *testing.T) {
	animal := testAnimal(1, 0, "200")
	rows := ComputeWeightHistory(animal, nil)

	if len(rows) != 1 {
		t.Fatalf("expected the anchor row only, got %d", len(rows))
	}
	if !rows[0].GmdAccumulatedGrams.IsZero() || !rows[0].GmdPeriodGrams.IsZero() {
		t.Fatalf("expected zero gains at the first point, got %s / %s",
			rows[0].GmdAccumulatedGrams, rows[0].GmdPeriodGrams)
	}
	if !rows[0].WeightKg.Equal(dec("200")) {
		t.Fatalf("expected the entry weight, got %s", rows[0].WeightKg)
	}
}

func TestComputeWeightHistory_GainScenario(t *testing.T) {
	// 200 kg at entry, 220 kg ten days later, 235 kg ten days after that.
	animal := testAnimal(1, 0, "200")
	rows := ComputeWeightHistory(animal, []models.Weighing{
		{ID: 1, AnimalId: 1, Date: testDay(10), WeightKg: dec("220")},
		{ID: 2, AnimalId: 1, Date: testDay(20), WeightKg: dec("235")},
	})

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if !rows[1].GmdAccumulatedGrams.Equal(dec("2")) {
		t.Fatalf("expected accumulated gain 2 at day 10, got %s", rows[1].GmdAccumulatedGrams)
	}
	if !rows[1].GmdPeriodGrams.Equal(dec("2")) {
		t.Fatalf("expected period gain 2 at day 10, got %s", rows[1].GmdPeriodGrams)
	}
	if !rows[2].GmdAccumulatedGrams.Equal(dec("1.75")) {
		t.Fatalf("expected accumulated gain 1.75 at day 20, got %s", rows[2].GmdAccumulatedGrams)
	}
	if !rows[2].GmdPeriodGrams.Equal(dec("1.5")) {
		t.Fatalf("expected period gain 1.5 at day 20, got %s", rows[2].GmdPeriodGrams)
	}
}

func TestComputeWeightHistory_SameDayReweighYieldsZeroGains(t *testing.T) {
	animal := testAnimal(1, 0, "200")
	rows := ComputeWeightHistory(animal, []models.Weighing{
		{ID: 1, AnimalId: 1, Date: testDay(0), WeightKg: dec("205")},
	})

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !rows[1].GmdAccumulatedGrams.IsZero() || !rows[1].GmdPeriodGrams.IsZero() {
		t.Fatalf("a zero day delta must yield zero gains, got %s / %s",
			rows[1].GmdAccumulatedGrams, rows[1].GmdPeriodGrams)
	}
}

func TestComputeWeightHistory_TelescopingLaw(t *testing.T) {
	// The period gains weighted by their day deltas sum to the total gain.
	animal := testAnimal(1, 0, "180.5")
	weighings := []models.Weighing{
		{ID: 1, AnimalId: 1, Date: testDay(7), WeightKg: dec("190.25")},
		{ID: 2, AnimalId: 1, Date: testDay(19), WeightKg: dec("201")},
		{ID: 3, AnimalId: 1, Date: testDay(33), WeightKg: dec("215.75")},
		{ID: 4, AnimalId: 1, Date: testDay(60), WeightKg: dec("240")},
	}
	series := BuildWeightSeries(animal, weighings)

	total := decimal.Zero
	for i := 1; i < len(series); i++ {
		total = total.Add(series[i].WeightKg.Sub(series[i-1].WeightKg))
	}
	expected := series[len(series)-1].WeightKg.Sub(series[0].WeightKg)
	if !total.Equal(expected) {
		t.Fatalf("telescoping sum %s does not match total gain %s", total, expected)
	}
}

func TestOverallGmd_SinglePointIsZero(t *testing.T) {
	animal := testAnimal(1, 0, "200")
	series := BuildWeightSeries(animal, nil)

	if gmd := OverallGmd(series); !gmd.IsZero() {
		t.Fatalf("expected zero gain for a single point, got %s", gmd)
	}
}

func TestForecastWeight_ExtrapolatesFromLastWeighing(t *testing.T) {
	animal := testAnimal(1, 0, "200")
	series := BuildWeightSeries(animal, []models.Weighing{
		{ID: 1, AnimalId: 1, Date: testDay(10), WeightKg: dec("220")},
	})
	gmd := OverallGmd(series)

	// 220 + 2 kg/day over 5 more days.
	forecast := ForecastWeight(series, gmd, testDay(15))
	if !forecast.Equal(dec("230")) {
		t.Fatalf("expected forecast 230, got %s", forecast)
	}
}

func TestForecastWeight_NoDriftWithoutGain(t *testing.T) {
	animal := testAnimal(1, 0, "200")
	series := BuildWeightSeries(animal, nil)

	forecast := ForecastWeight(series, OverallGmd(series), testDay(30))
	if !forecast.Equal(dec("200")) {
		t.Fatalf("expected the entry weight to carry forward, got %s", forecast)
	}
}
