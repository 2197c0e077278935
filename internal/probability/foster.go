package probability

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// detFloor marks the combined in-plane covariance as effectively singular.
const detFloor = 1e-20

// fosterPc integrates the 2D Gaussian density over the combined hard-body
// disk in the encounter plane (Foster 1992). hbrKm is the disk radius.
//
// The integral runs in polar coordinates around the predicted miss point.
// Gauss-Legendre node counts are doubled until two successive estimates
// agree, then the result is clamped to [0, 1].
func fosterPc(plane encounterPlane, hbrKm float64) float64 {
	sxx := plane.cov.At(0, 0)
	syy := plane.cov.At(1, 1)
	sxy := plane.cov.At(0, 1)

	det := sxx*syy - sxy*sxy
	if det < detFloor {
		return 0
	}

	// Inverse of the 2x2 covariance.
	ixx := syy / det
	iyy := sxx / det
	ixy := -sxy / det

	mx, my := plane.miss[0], plane.miss[1]
	norm := 1 / (2 * math.Pi * math.Sqrt(det))

	density := func(r, theta float64) float64 {
		dx := mx + r*math.Cos(theta)
		dy := my + r*math.Sin(theta)
		q := ixx*dx*dx + 2*ixy*dx*dy + iyy*dy*dy
		return r * norm * math.Exp(-0.5*q)
	}

	integrate := func(nodes int) float64 {
		return quad.Fixed(func(r float64) float64 {
			return quad.Fixed(func(theta float64) float64 {
				return density(r, theta)
			}, 0, 2*math.Pi, nodes, quad.Legendre{}, 0)
		}, 0, hbrKm, nodes, quad.Legendre{}, 0)
	}

	prev := integrate(32)
	for nodes := 64; nodes <= 512; nodes *= 2 {
		cur := integrate(nodes)
		if math.Abs(cur-prev) <= 1e-10+1e-6*math.Abs(cur) {
			prev = cur
			break
		}
		prev = cur
	}

	return math.Min(math.Max(prev, 0), 1)
}
