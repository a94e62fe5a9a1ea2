package workflow

import (
	"testing"

	"github.com/herdlink/livestock_backend/models"
	"github.com/herdlink/livestock_backend/utils"
	"github.com/shopspring/decimal"
)

func activeSnapshot(id int, lot string, sex models.Sex, entryDay int, entryWeight string, locationId int) *AnimalEvents {
	animal := testAnimal(id, entryDay, entryWeight)
	animal.Lot = lot
	animal.Sex = sex
	snapshot := &AnimalEvents{Animal: animal}
	if locationId > 0 {
		snapshot.LocationChanges = []models.LocationChange{
			{ID: id, AnimalId: id, Date: testDay(entryDay), LocationId: locationId},
		}
	}
	return snapshot
}

func TestComputeLotSummary_GroupsAndAverages(t *testing.T) {
	snapshots := []*AnimalEvents{
		activeSnapshot(1, "L1", models.SexMale, 0, "200", 10),
		activeSnapshot(2, "L1", models.SexFemale, 10, "180", 10),
		activeSnapshot(3, "L1", models.SexMale, 20, "210", 10),
		activeSnapshot(4, "L2", models.SexFemale, 0, "190", 10),
	}

	summaries, err := ComputeLotSummary(snapshots, testRef(), testDay(30))
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 lots, got %d", len(summaries))
	}

	lot1 := summaries[0]
	if lot1.Lot != "L1" || lot1.AnimalCount != 3 || lot1.MaleCount != 2 || lot1.FemaleCount != 1 {
		t.Fatalf("unexpected L1 counts: %+v", lot1)
	}

	// The lot mean age equals the arithmetic mean of the individual ages.
	var ageSum decimal.Decimal
	for _, snapshot := range snapshots[:3] {
		kpis, err := ComputeAnimalKpis(snapshot, testRef(), testDay(30))
		if err != nil {
			t.Fatal(err)
		}
		ageSum = ageSum.Add(kpis.CurrentAgeMonths)
	}
	expected := ageSum.Div(decimal.NewFromInt(3)).Round(2)
	if !lot1.AverageAgeMonths.Equal(expected) {
		t.Fatalf("expected mean age %s, got %s", expected, lot1.AverageAgeMonths)
	}
}

func TestComputeLotSummary_ExcludesSoldAndDead(t *testing.T) {
	sold := activeSnapshot(2, "L1", models.SexFemale, 0, "180", 10)
	sold.Sale = &models.Sale{ID: 1, AnimalId: 2, Date: testDay(5), SalePrice: dec("900")}
	snapshots := []*AnimalEvents{
		activeSnapshot(1, "L1", models.SexMale, 0, "200", 10),
		sold,
	}

	summaries, err := ComputeLotSummary(snapshots, testRef(), testDay(30))
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].AnimalCount != 1 {
		t.Fatalf("expected only the active animal, got %+v", summaries)
	}
}

func TestComputeLocationSummary_CapacityRates(t *testing.T) {
	locations := []*models.Location{
		{ID: 10, Name: "Pasture North", AreaHectares: utils.DecimalPtr(dec("2"))},
	}
	// Two animals at 450 kg each: 2 animal units on 2 hectares.
	snapshots := []*AnimalEvents{
		activeSnapshot(1, "L1", models.SexMale, 0, "450", 10),
		activeSnapshot(2, "L1", models.SexMale, 0, "450", 10),
	}

	summaries, err := ComputeLocationSummary(locations, snapshots, testRef(), testDay(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 location, got %d", len(summaries))
	}
	summary := summaries[0]
	if summary.AnimalCount != 2 {
		t.Fatalf("expected 2 animals, got %d", summary.AnimalCount)
	}
	if !summary.ActualAnimalUnits.Equal(dec("2")) {
		t.Fatalf("expected 2 animal units, got %s", summary.ActualAnimalUnits)
	}
	if summary.CapacityRateActualUaHa == nil || !summary.CapacityRateActualUaHa.Equal(dec("1")) {
		t.Fatalf("expected capacity rate 1, got %v", summary.CapacityRateActualUaHa)
	}
}

func TestComputeLocationSummary_ZeroAreaReportsNullRate(t *testing.T) {
	locations := []*models.Location{
		{ID: 10, Name: "Corral", AreaHectares: utils.DecimalPtr(decimal.Zero)},
	}
	snapshots := make([]*AnimalEvents, 0, 5)
	for i := 1; i <= 5; i++ {
		snapshots = append(snapshots, activeSnapshot(i, "L1", models.SexMale, 0, "300", 10))
	}

	summaries, err := ComputeLocationSummary(locations, snapshots, testRef(), testDay(0))
	if err != nil {
		t.Fatal(err)
	}
	summary := summaries[0]
	if summary.AnimalCount != 5 {
		t.Fatalf("expected the head count regardless of area, got %d", summary.AnimalCount)
	}
	if summary.CapacityRateActualUaHa != nil || summary.CapacityRateForecastedUaHa != nil {
		t.Fatal("zero area must report null capacity rates")
	}
}

func TestComputeLocationSummary_MissingAreaReportsNullRate(t *testing.T) {
	locations := []*models.Location{{ID: 10, Name: "Unfenced"}}
	snapshots := []*AnimalEvents{activeSnapshot(1, "L1", models.SexMale, 0, "300", 10)}

	summaries, err := ComputeLocationSummary(locations, snapshots, testRef(), testDay(0))
	if err != nil {
		t.Fatal(err)
	}
	if summaries[0].CapacityRateActualUaHa != nil {
		t.Fatal("missing area must report a null capacity rate")
	}
}

func TestComputeLocationSummary_SublocationHeadCounts(t *testing.T) {
	locations := []*models.Location{
		{
			ID:           10,
			Name:         "Pasture North",
			AreaHectares: utils.DecimalPtr(dec("4")),
			Sublocations: []*models.Sublocation{
				{ID: 100, ParentLocationId: 10, Name: "Paddock A"},
				{ID: 101, ParentLocationId: 10, Name: "Paddock B"},
			},
		},
	}
	inPaddock := activeSnapshot(1, "L1", models.SexMale, 0, "300", 0)
	inPaddock.LocationChanges = []models.LocationChange{
		{ID: 1, AnimalId: 1, Date: testDay(0), LocationId: 10, SublocationId: utils.IntPtr(100)},
	}
	snapshots := []*AnimalEvents{
		inPaddock,
		activeSnapshot(2, "L1", models.SexMale, 0, "300", 10),
	}

	summaries, err := ComputeLocationSummary(locations, snapshots, testRef(), testDay(0))
	if err != nil {
		t.Fatal(err)
	}
	summary := summaries[0]
	if summary.AnimalCount != 2 {
		t.Fatalf("expected both animals at the location, got %d", summary.AnimalCount)
	}
	if len(summary.Sublocations) != 2 {
		t.Fatalf("expected both paddocks listed, got %d", len(summary.Sublocations))
	}
	if summary.Sublocations[0].AnimalCount != 1 || summary.Sublocations[1].AnimalCount != 0 {
		t.Fatalf("unexpected paddock counts: %+v", summary.Sublocations)
	}
}

func TestComputeActiveStockSummary_EmptyHerd(t *testing.T) {
	summary, err := ComputeActiveStockSummary(nil, testRef(), testDay(0))
	if err != nil {
		t.Fatal(err)
	}
	if summary.Summary.AnimalCount != 0 {
		t.Fatalf("expected an empty herd, got %d", summary.Summary.AnimalCount)
	}
	if !summary.Summary.AverageAgeMonths.IsZero() || !summary.Summary.AverageGmdKg.IsZero() {
		t.Fatal("empty herd averages must be zero, not an error")
	}
	if len(summary.Animals) != 0 {
		t.Fatalf("expected no animal records, got %d", len(summary.Animals))
	}
}

func TestComputeActiveStockSummary_FarmAggregates(t *testing.T) {
	snapshots := []*AnimalEvents{
		activeSnapshot(1, "L1", models.SexMale, 0, "200", 10),
		activeSnapshot(2, "L1", models.SexFemale, 0, "180", 10),
		activeSnapshot(3, "L2", models.SexFemale, 0, "190", 11),
	}

	summary, err := ComputeActiveStockSummary(snapshots, testRef(), testDay(10))
	if err != nil {
		t.Fatal(err)
	}
	if summary.Summary.AnimalCount != 3 || summary.Summary.Males != 1 || summary.Summary.Females != 2 {
		t.Fatalf("unexpected sex counts: %+v", summary.Summary)
	}
	if len(summary.Animals) != 3 {
		t.Fatalf("expected a KPI record per animal, got %d", len(summary.Animals))
	}
	for _, record := range summary.Animals {
		if record.Status != models.AnimalStatusActive {
			t.Fatalf("expected only active animals, got %s", record.Status)
		}
		if record.ForecastedCurrentWeightKg == nil {
			t.Fatal("active animals must carry a forecast")
		}
	}
}
