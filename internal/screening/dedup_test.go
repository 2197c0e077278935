package screening

import (
	"testing"
	"time"
)

var dedupBase = time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)

func TestMergeCollapsesNearbyDetections(t *testing.T) {
	s := newEventSet()
	s.merge(ConjunctionEvent{
		PrimaryNORADID:   25544,
		SecondaryNORADID: 48274,
		TCA:              dedupBase,
		MissDistanceKm:   4.2,
		RelativeSpeedKmS: 11.0,
	})
	// Same pair, TCA 2 minutes later, smaller miss: must update in place.
	s.merge(ConjunctionEvent{
		PrimaryNORADID:   25544,
		SecondaryNORADID: 48274,
		TCA:              dedupBase.Add(2 * time.Minute),
		MissDistanceKm:   1.7,
		RelativeSpeedKmS: 11.2,
	})

	events := s.sorted()
	if len(events) != 1 {
		t.Fatalf("expected 1 merged event, got %d", len(events))
	}
	ev := events[0]
	if ev.MissDistanceKm != 1.7 {
		t.Errorf("miss distance = %v, want 1.7 (smaller record wins)", ev.MissDistanceKm)
	}
	if !ev.TCA.Equal(dedupBase.Add(2 * time.Minute)) {
		t.Errorf("TCA = %v, want the closer detection's TCA", ev.TCA)
	}
	if ev.RelativeSpeedKmS != 11.2 {
		t.Errorf("relative speed = %v, want 11.2", ev.RelativeSpeedKmS)
	}
}

func TestMergeKeepsSmallerExisting(t *testing.T) {
	s := newEventSet()
	s.merge(ConjunctionEvent{PrimaryNORADID: 1, SecondaryNORADID: 2, TCA: dedupBase, MissDistanceKm: 0.5})
	s.merge(ConjunctionEvent{PrimaryNORADID: 1, SecondaryNORADID: 2, TCA: dedupBase.Add(time.Minute), MissDistanceKm: 3.0})

	events := s.sorted()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].MissDistanceKm != 0.5 {
		t.Errorf("miss distance = %v, want existing 0.5 kept", events[0].MissDistanceKm)
	}
}

func TestMergeSeparateEncounters(t *testing.T) {
	s := newEventSet()
	// Same pair but TCAs a full orbit apart: two physical encounters.
	s.merge(ConjunctionEvent{PrimaryNORADID: 1, SecondaryNORADID: 2, TCA: dedupBase, MissDistanceKm: 3.0})
	s.merge(ConjunctionEvent{PrimaryNORADID: 1, SecondaryNORADID: 2, TCA: dedupBase.Add(92 * time.Minute), MissDistanceKm: 2.0})
	// Different pair entirely.
	s.merge(ConjunctionEvent{PrimaryNORADID: 1, SecondaryNORADID: 3, TCA: dedupBase, MissDistanceKm: 9.0})

	events := s.sorted()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
}

func TestSortedAscendingByMissDistance(t *testing.T) {
	s := newEventSet()
	s.merge(ConjunctionEvent{PrimaryNORADID: 1, SecondaryNORADID: 2, TCA: dedupBase, MissDistanceKm: 7.5})
	s.merge(ConjunctionEvent{PrimaryNORADID: 1, SecondaryNORADID: 3, TCA: dedupBase, MissDistanceKm: 0.3})
	s.merge(ConjunctionEvent{PrimaryNORADID: 1, SecondaryNORADID: 4, TCA: dedupBase, MissDistanceKm: 2.1})

	events := s.sorted()
	for i := 1; i < len(events); i++ {
		if events[i].MissDistanceKm < events[i-1].MissDistanceKm {
			t.Fatalf("events not sorted ascending: %v before %v",
				events[i-1].MissDistanceKm, events[i].MissDistanceKm)
		}
	}
}
