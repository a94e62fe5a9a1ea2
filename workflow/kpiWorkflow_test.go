package workflow

import (
	"errors"
	"testing"

	"github.com/herdlink/livestock_backend/models"
	"github.com/herdlink/livestock_backend/utils"
)

func testRef() *RefData {
	return &RefData{
		LocationNames:    map[int]string{10: "Pasture North", 11: "Feedlot"},
		SublocationNames: map[int]string{100: "Paddock A"},
	}
}

func TestComputeAnimalKpis_ActiveAnimal(t *testing.T) {
	snapshot := &AnimalEvents{
		Animal: testAnimal(1, 0, "200"),
		Weighings: []models.Weighing{
			{ID: 1, AnimalId: 1, Date: testDay(10), WeightKg: dec("220")},
		},
		LocationChanges: []models.LocationChange{
			{ID: 1, AnimalId: 1, Date: testDay(0), LocationId: 10, SublocationId: utils.IntPtr(100)},
			{ID: 2, AnimalId: 1, Date: testDay(5), LocationId: 11},
		},
		DietLogs: []models.DietLog{
			{ID: 1, AnimalId: 1, Date: testDay(0), DietType: "pasture"},
		},
	}

	kpis, err := ComputeAnimalKpis(snapshot, testRef(), testDay(15))
	if err != nil {
		t.Fatal(err)
	}
	if kpis.Status != models.AnimalStatusActive {
		t.Fatalf("expected Active, got %s", kpis.Status)
	}
	if !kpis.AverageDailyGainKg.Equal(dec("2")) {
		t.Fatalf("expected gain 2, got %s", kpis.AverageDailyGainKg)
	}
	if !kpis.LastWeightKg.Equal(dec("220")) {
		t.Fatalf("expected last weight 220, got %s", kpis.LastWeightKg)
	}
	if kpis.ForecastedCurrentWeightKg == nil || !kpis.ForecastedCurrentWeightKg.Equal(dec("230")) {
		t.Fatalf("expected forecast 230, got %v", kpis.ForecastedCurrentWeightKg)
	}
	if kpis.DaysOnFarm != 15 {
		t.Fatalf("expected 15 days on farm, got %d", kpis.DaysOnFarm)
	}
	if kpis.CurrentLocationId == nil || *kpis.CurrentLocationId != 11 {
		t.Fatalf("expected the later move to win, got %v", kpis.CurrentLocationId)
	}
	if kpis.CurrentLocationName == nil || *kpis.CurrentLocationName != "Feedlot" {
		t.Fatalf("expected location name Feedlot, got %v", kpis.CurrentLocationName)
	}
	if kpis.CurrentSublocationId != nil {
		t.Fatal("the later move has no sublocation, expected nil")
	}
	if kpis.CurrentDietType == nil || *kpis.CurrentDietType != "pasture" {
		t.Fatalf("expected diet pasture, got %v", kpis.CurrentDietType)
	}
}

func TestComputeAnimalKpis_SoldFreezesAtSaleDate(t *testing.T) {
	// Sold on day 31 at 250 kg; evaluation two weeks later must not move
	// any KPI.
	snapshot := &AnimalEvents{
		Animal: testAnimal(1, 0, "200"),
		Weighings: []models.Weighing{
			{ID: 1, AnimalId: 1, Date: testDay(10), WeightKg: dec("220")},
			{ID: 2, AnimalId: 1, Date: testDay(31), WeightKg: dec("250")},
		},
		Sale: &models.Sale{ID: 1, AnimalId: 1, Date: testDay(31), SalePrice: dec("1800")},
	}

	kpis, err := ComputeAnimalKpis(snapshot, testRef(), testDay(45))
	if err != nil {
		t.Fatal(err)
	}
	if kpis.Status != models.AnimalStatusSold {
		t.Fatalf("expected Sold, got %s", kpis.Status)
	}
	if kpis.ForecastedCurrentWeightKg != nil {
		t.Fatal("a sold animal must not carry a forecast")
	}
	if kpis.DaysOnFarm != 31 {
		t.Fatalf("expected 31 days on farm, got %d", kpis.DaysOnFarm)
	}
	if !kpis.LastWeightKg.Equal(dec("250")) {
		t.Fatalf("expected the exit weight, got %s", kpis.LastWeightKg)
	}
}

func TestComputeAnimalKpis_DeadAnimal(t *testing.T) {
	snapshot := &AnimalEvents{
		Animal: testAnimal(1, 0, "200"),
		Death:  &models.Death{ID: 1, AnimalId: 1, Date: testDay(20), Cause: "illness"},
	}

	kpis, err := ComputeAnimalKpis(snapshot, testRef(), testDay(60))
	if err != nil {
		t.Fatal(err)
	}
	if kpis.Status != models.AnimalStatusDead {
		t.Fatalf("expected Dead, got %s", kpis.Status)
	}
	if kpis.ForecastedCurrentWeightKg != nil {
		t.Fatal("a dead animal must not carry a forecast")
	}
	if kpis.DaysOnFarm != 20 {
		t.Fatalf("expected 20 days on farm, got %d", kpis.DaysOnFarm)
	}
}

func TestComputeAnimalKpis_UnknownStateFieldsStayNil(t *testing.T) {
	snapshot := &AnimalEvents{Animal: testAnimal(1, 0, "200")}

	kpis, err := ComputeAnimalKpis(snapshot, testRef(), testDay(10))
	if err != nil {
		t.Fatal(err)
	}
	if kpis.CurrentLocationId != nil || kpis.CurrentDietType != nil {
		t.Fatal("an animal with no events must report unknown location and diet")
	}
	if !kpis.LastWeightKg.Equal(dec("200")) {
		t.Fatalf("expected the entry weight as last weight, got %s", kpis.LastWeightKg)
	}
	if !kpis.AverageDailyGainKg.IsZero() {
		t.Fatalf("expected zero gain with only the anchor, got %s", kpis.AverageDailyGainKg)
	}
}

func TestComputeAnimalKpis_AgeAccruesWithDaysOnFarm(t *testing.T) {
	snapshot := &AnimalEvents{Animal: testAnimal(1, 0, "200")}

	kpis, err := ComputeAnimalKpis(snapshot, testRef(), testDay(0))
	if err != nil {
		t.Fatal(err)
	}
	if !kpis.CurrentAgeMonths.Equal(dec("8")) {
		t.Fatalf("expected the entry age on day zero, got %s", kpis.CurrentAgeMonths)
	}

	later, err := ComputeAnimalKpis(snapshot, testRef(), testDay(61))
	if err != nil {
		t.Fatal(err)
	}
	expected := AgeMonths(dec("8"), 61).Round(2)
	if !later.CurrentAgeMonths.Equal(expected) {
		t.Fatalf("expected age %s after 61 days, got %s", expected, later.CurrentAgeMonths)
	}
}

func TestComputeAnimalKpis_ConflictingTerminalEventsAreFatal(t *testing.T) {
	snapshot := &AnimalEvents{
		Animal: testAnimal(1, 0, "200"),
		Sale:   &models.Sale{ID: 1, AnimalId: 1, Date: testDay(10), SalePrice: dec("1000")},
		Death:  &models.Death{ID: 1, AnimalId: 1, Date: testDay(12)},
	}

	if _, err := ComputeAnimalKpis(snapshot, testRef(), testDay(20)); !errors.Is(err, utils.ErrorConflictingTerminalEvents) {
		t.Fatalf("expected the terminal conflict error, got %v", err)
	}
}
