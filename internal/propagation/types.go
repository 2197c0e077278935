package propagation

import (
	"time"

	"github.com/conjunct/conjunct/internal/tle"
)

// StateVector is an inertial position/velocity sample in the TEME frame.
// Units are km and km/s.
type StateVector struct {
	Position [3]float64
	Velocity [3]float64
}

// Ephemeris is the propagation capability consumed by the screening and
// probability layers. Propagate reports ok=false when the underlying model
// fails for that instant; it never panics and never returns partial state.
type Ephemeris interface {
	Propagate(t time.Time) (StateVector, bool)
}

// Provider converts an element set into a propagatable ephemeris.
// The conversion happens once per object; the returned Ephemeris is
// then a pure function of time.
type Provider interface {
	Ephemeris(entry tle.TLE) (Ephemeris, error)
}
