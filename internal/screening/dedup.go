package screening

import (
	"sort"
	"time"
)

// Detections of the same pair with TCAs closer than this are one
// physical encounter.
const dedupTolerance = 5 * time.Minute

// pairKey identifies an object pair. For the per-primary pipeline the
// order is (primary, secondary); the catalog screener uses (min, max).
type pairKey struct {
	a, b int
}

// eventSet accumulates conjunction events with duplicate merging.
// Overlapping coarse-scan windows produce several refined detections of
// one physical encounter; merge keeps the minimum-distance record.
type eventSet struct {
	events []ConjunctionEvent
	byPair map[pairKey][]int // indices into events
}

func newEventSet() *eventSet {
	return &eventSet{byPair: make(map[pairKey][]int)}
}

// merge inserts ev, or updates an existing event in place when one with
// the same pair has a TCA within the dedup tolerance and a larger miss
// distance.
func (s *eventSet) merge(ev ConjunctionEvent) {
	key := pairKey{ev.PrimaryNORADID, ev.SecondaryNORADID}
	for _, idx := range s.byPair[key] {
		existing := &s.events[idx]
		dt := existing.TCA.Sub(ev.TCA)
		if dt < 0 {
			dt = -dt
		}
		if dt < dedupTolerance {
			if ev.MissDistanceKm < existing.MissDistanceKm {
				existing.TCA = ev.TCA
				existing.MissDistanceKm = ev.MissDistanceKm
				existing.RelativeSpeedKmS = ev.RelativeSpeedKmS
			}
			return
		}
	}
	s.byPair[key] = append(s.byPair[key], len(s.events))
	s.events = append(s.events, ev)
}

// sorted returns the accumulated events ascending by miss distance.
func (s *eventSet) sorted() []ConjunctionEvent {
	out := make([]ConjunctionEvent, len(s.events))
	copy(out, s.events)
	sort.Slice(out, func(i, j int) bool {
		return out[i].MissDistanceKm < out[j].MissDistanceKm
	})
	return out
}
