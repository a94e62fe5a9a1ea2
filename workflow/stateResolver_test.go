package workflow

import (
	"testing"
	"time"

	"github.com/herdlink/livestock_backend/models"
)

func testDay(offset int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestLatestEventBefore_PicksMaxDateWithinCutoff(t *testing.T) {
	changes := []models.LocationChange{
		{ID: 1, Date: testDay(0), LocationId: 10},
		{ID: 2, Date: testDay(5), LocationId: 11},
		{ID: 3, Date: testDay(12), LocationId: 12},
	}

	change, ok := LatestEventBefore(changes, testDay(10))
	if !ok {
		t.Fatal("expected an event within the cutoff")
	}
	if change.LocationId != 11 {
		t.Fatalf("expected location 11, got %d", change.LocationId)
	}
}

func TestLatestEventBefore_SameDateTieGoesToHighestId(t *testing.T) {
	// Two corrections recorded the same day: the later insert wins.
	logs := []models.DietLog{
		{ID: 7, Date: testDay(3), DietType: "pasture"},
		{ID: 9, Date: testDay(3), DietType: "feedlot"},
		{ID: 8, Date: testDay(3), DietType: "mixed"},
	}

	log, ok := LatestEventBefore(logs, testDay(3))
	if !ok {
		t.Fatal("expected an event")
	}
	if log.DietType != "feedlot" {
		t.Fatalf("expected the highest id to win, got %q", log.DietType)
	}
}

func TestLatestEventBefore_NoQualifyingEvent(t *testing.T) {
	changes := []models.LocationChange{
		{ID: 1, Date: testDay(20), LocationId: 10},
	}

	if _, ok := LatestEventBefore(changes, testDay(10)); ok {
		t.Fatal("expected no event before the cutoff")
	}
	if _, ok := LatestEventBefore([]models.LocationChange{}, testDay(10)); ok {
		t.Fatal("expected no event from an empty list")
	}
}

func TestLatestEventBefore_CutoffIsInclusive(t *testing.T) {
	changes := []models.LocationChange{
		{ID: 1, Date: testDay(10), LocationId: 42},
	}

	change, ok := LatestEventBefore(changes, testDay(10))
	if !ok || change.LocationId != 42 {
		t.Fatal("an event dated exactly on the cutoff must qualify")
	}
}
