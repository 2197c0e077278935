package screening

import (
	"time"

	"github.com/conjunct/conjunct/internal/propagation"
)

// ConjunctionEvent is a predicted close approach between two objects.
// Invariants: the two NORAD IDs differ, miss distance and relative speed
// are non-negative, and TCA lies within the screened window (plus at most
// one coarse step).
type ConjunctionEvent struct {
	PrimaryNORADID   int       `json:"primary_norad_id"`
	SecondaryNORADID int       `json:"secondary_norad_id"`
	TCA              time.Time `json:"tca"`
	MissDistanceKm   float64   `json:"miss_distance_km"`
	RelativeSpeedKmS float64   `json:"relative_speed_km_s"`
}

// window is one coarse-scan sample where the separation dropped below the
// screening threshold. Consumed only by the refiner.
type window struct {
	t          time.Time
	distanceKm float64
	state      propagation.StateVector // secondary state at detection
}
