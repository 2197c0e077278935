package propagation

import (
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/conjunct/conjunct/internal/tle"
)

// SGP4 library choice: github.com/joshuaferrara/go-satellite
//
// Pure Go (no CGO), explicit TEME output, widely used. Propagate() takes
// Satellite by value so SGP4 error codes are not visible to the caller;
// propagation failures are detected by checking the output for NaN/Inf and
// unreasonable position magnitudes.

// SGP4 wraps a go-satellite model for a single object.
type SGP4 struct {
	sat     satellite.Satellite
	noradID int
}

// SGP4Provider converts element sets into SGP4 ephemerides.
type SGP4Provider struct{}

// Ephemeris initializes the SGP4 model for the given element set.
func (SGP4Provider) Ephemeris(entry tle.TLE) (Ephemeris, error) {
	return NewSGP4(entry)
}

// NewSGP4 creates an SGP4 ephemeris from a parsed TLE.
// Returns an error if the TLE lines are malformed or the model fails to
// initialize.
//
// Pre-validates the line format before passing to the library, because
// go-satellite calls log.Fatal on malformed input (which would kill the
// process).
func NewSGP4(entry tle.TLE) (*SGP4, error) {
	if err := validateTLELines(entry.Line1, entry.Line2); err != nil {
		return nil, fmt.Errorf("invalid TLE for NORAD %d: %w", entry.NORADID, err)
	}

	sat := satellite.TLEToSat(entry.Line1, entry.Line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for NORAD %d: code=%d %s", entry.NORADID, sat.Error, sat.ErrorStr)
	}
	return &SGP4{sat: sat, noradID: entry.NORADID}, nil
}

// validateTLELines performs basic format validation on TLE lines.
func validateTLELines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	return nil
}

// Propagate computes the object state at the given time.
// Returns ok=false if the model produces NaN/Inf output or a position
// magnitude outside the ~6200-50000 km range that any Earth orbit can reach.
func (p *SGP4) Propagate(t time.Time) (StateVector, bool) {
	pos, vel := satellite.Propagate(p.sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	if !isFinite(pos.X) || !isFinite(pos.Y) || !isFinite(pos.Z) ||
		!isFinite(vel.X) || !isFinite(vel.Y) || !isFinite(vel.Z) {
		return StateVector{}, false
	}

	mag := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	if mag < 6200.0 || mag > 50000.0 {
		return StateVector{}, false
	}

	return StateVector{
		Position: [3]float64{pos.X, pos.Y, pos.Z},
		Velocity: [3]float64{vel.X, vel.Y, vel.Z},
	}, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
