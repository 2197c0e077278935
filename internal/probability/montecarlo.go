package probability

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// mcSeed fixes the sampler so repeated runs of the same case agree exactly.
const mcSeed = 42

// monteCarloPc estimates the collision probability by sampling relative
// positions from the combined position covariance centered on the predicted
// miss vector. Each sample is projected into the encounter plane by removing
// its along-track component; a hit is a projected separation strictly inside
// the hard-body radius.
//
// A covariance that cannot be factorized yields probability zero, matching
// the analytic path's treatment of singular geometry.
func monteCarloPc(relPos, relVel [3]float64, posCov *mat.SymDense, hbrKm float64, samples int) float64 {
	src := rand.NewSource(mcSeed)
	normal, ok := distmv.NewNormal(relPos[:], posCov, src)
	if !ok {
		return 0
	}

	var track [3]float64
	speed := norm3(relVel)
	if speed >= degeneracyEps {
		track = scale3(relVel, 1/speed)
	}

	hits := 0
	sample := make([]float64, 3)
	for i := 0; i < samples; i++ {
		normal.Rand(sample)
		p := [3]float64{sample[0], sample[1], sample[2]}

		if speed >= degeneracyEps {
			along := dot3(p, track)
			p = sub3(p, scale3(track, along))
		}
		if norm3(p) < hbrKm {
			hits++
		}
	}
	return float64(hits) / float64(samples)
}
