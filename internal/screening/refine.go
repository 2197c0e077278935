package screening

import (
	"math"
	"time"

	"github.com/conjunct/conjunct/internal/propagation"
)

// refineStepFloor is the temporal resolution limit of the refiner.
const refineStepFloor = time.Second

// refineTCA narrows a bracketed close approach to its time of closest
// approach. Each iteration sweeps the window at the current step, then
// shrinks the window to ±1 step around the best sample and halves the
// step, until the step drops below one second. The best miss distance is
// non-increasing across iterations; the result is a local minimum within
// the bracket, not necessarily the global one.
//
// Propagation here is direct and single-object: refinement windows are
// small, so batching buys nothing.
func refineTCA(primary, secondary propagation.Ephemeris, tStart, tEnd time.Time, initialStep time.Duration) (tca time.Time, missKm, relSpeedKmS float64) {
	step := initialStep

	bestTime := tStart
	bestDist := math.Inf(1)
	bestRelSpeed := 0.0

	for step >= refineStepFloor {
		for current := tStart; !current.After(tEnd); current = current.Add(step) {
			primState, ok := primary.Propagate(current)
			if !ok {
				continue
			}
			secState, ok := secondary.Propagate(current)
			if !ok {
				continue
			}

			dist := separation(primState.Position, secState.Position)
			if dist < bestDist {
				bestDist = dist
				bestTime = current
				bestRelSpeed = separation(primState.Velocity, secState.Velocity)
			}
		}

		if lower := bestTime.Add(-step); lower.After(tStart) {
			tStart = lower
		}
		if upper := bestTime.Add(step); upper.Before(tEnd) {
			tEnd = upper
		}
		step /= 2
	}

	return bestTime, bestDist, bestRelSpeed
}

// separation is the Euclidean distance between two 3-vectors.
func separation(a, b [3]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
