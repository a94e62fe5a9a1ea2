package workflow

import (
	"time"

	"github.com/herdlink/livestock_backend/models"
	"github.com/herdlink/livestock_backend/utils"
)

// AnimalEvents is one animal's full event set, read from a single
// consistent snapshot. Every engine entry point works off this struct and
// performs no reads of its own.
type AnimalEvents struct {
	Animal          *models.Animal
	Weighings       []models.Weighing
	LocationChanges []models.LocationChange
	DietLogs        []models.DietLog
	Sale            *models.Sale
	Death           *models.Death
}

// RefData carries the location and sublocation names the engine needs to
// label resolved positions. Fetched once per farm, shared across animals.
type RefData struct {
	LocationNames    map[int]string
	SublocationNames map[int]string
}

// AsOf returns a copy of the snapshot restricted to events dated on or
// before cutoff, for point-in-time evaluation. An animal that entered
// after cutoff was not on the farm yet; AsOf returns nil for it.
func (s *AnimalEvents) AsOf(cutoff time.Time) *AnimalEvents {
	day := utils.TruncateToDay(cutoff)
	if utils.TruncateToDay(s.Animal.EntryDate).After(day) {
		return nil
	}
	restricted := &AnimalEvents{Animal: s.Animal}
	for _, weighing := range s.Weighings {
		if !weighing.Date.After(day) {
			restricted.Weighings = append(restricted.Weighings, weighing)
		}
	}
	for _, change := range s.LocationChanges {
		if !change.Date.After(day) {
			restricted.LocationChanges = append(restricted.LocationChanges, change)
		}
	}
	for _, log := range s.DietLogs {
		if !log.Date.After(day) {
			restricted.DietLogs = append(restricted.DietLogs, log)
		}
	}
	if s.Sale != nil && !s.Sale.Date.After(day) {
		restricted.Sale = s.Sale
	}
	if s.Death != nil && !s.Death.Date.After(day) {
		restricted.Death = s.Death
	}
	return restricted
}

// ResolveStatus classifies the animal and returns the terminal date when
// one exists. Both a sale and a death on the same animal means the store
// contract was violated; that is fatal, not repairable here.
func (s *AnimalEvents) ResolveStatus() (models.AnimalStatus, *time.Time, error) {
	if s.Sale != nil && s.Death != nil {
		return "", nil, utils.ErrorConflictingTerminalEvents
	}
	if s.Sale != nil {
		date := utils.TruncateToDay(s.Sale.Date)
		return models.AnimalStatusSold, &date, nil
	}
	if s.Death != nil {
		date := utils.TruncateToDay(s.Death.Date)
		return models.AnimalStatusDead, &date, nil
	}
	return models.AnimalStatusActive, nil, nil
}
