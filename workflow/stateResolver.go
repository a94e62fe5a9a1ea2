package workflow

import "time"

// DatedEvent is the minimal shape the resolver needs from an event row.
// Every event table in models satisfies it.
type DatedEvent interface {
	EventDate() time.Time
	EventId() int
}

// LatestEventBefore returns the event with the greatest date not after
// cutoff. Same-date ties go to the highest id, the most recently recorded
// row. The second return is false when no event qualifies; callers treat
// that as "unknown", not an error.
func LatestEventBefore[E DatedEvent](events []E, cutoff time.Time) (E, bool) {
	var best E
	found := false
	for _, event := range events {
		if event.EventDate().After(cutoff) {
			continue
		}
		if !found {
			best = event
			found = true
			continue
		}
		if event.EventDate().After(best.EventDate()) {
			best = event
			continue
		}
		if event.EventDate().Equal(best.EventDate()) && event.EventId() > best.EventId() {
			best = event
		}
	}
	return best, found
}
