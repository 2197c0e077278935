package screening

import (
	"math"

	"github.com/conjunct/conjunct/internal/tle"
)

const secondsPerDay = 86400.0

// apsides computes perigee and apogee altitude in km from the element
// set's mean motion (Kepler's third law) and eccentricity.
func (c Constants) apsides(e tle.TLE) (perigeeKm, apogeeKm float64) {
	n := e.MeanMotionRevDay * 2 * math.Pi / secondsPerDay // rad/s
	a := math.Cbrt(c.MuKm3S2 / (n * n))
	perigeeKm = a*(1-e.Eccentricity) - c.EarthRadiusKm
	apogeeKm = a*(1+e.Eccentricity) - c.EarthRadiusKm
	return perigeeKm, apogeeKm
}

// Prefilter keeps the candidates whose orbital altitude band overlaps the
// primary's band padded by the threshold on both sides. Self-pairs are
// excluded. This is a necessary condition, not a sufficient one: it never
// discards a co-altitude approach but keeps pairs the later stages must
// reject.
func Prefilter(consts Constants, primary tle.TLE, catalog []tle.TLE, thresholdKm float64) []tle.TLE {
	primaryPerigee, primaryApogee := consts.apsides(primary)

	var filtered []tle.TLE
	for _, candidate := range catalog {
		if candidate.NORADID == primary.NORADID {
			continue
		}
		candPerigee, candApogee := consts.apsides(candidate)
		if primaryPerigee-thresholdKm <= candApogee && primaryApogee+thresholdKm >= candPerigee {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}
