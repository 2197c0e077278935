package probability

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Method selects the collision probability algorithm.
type Method string

const (
	// MethodFoster is the analytic 2D integration of Foster (1992).
	MethodFoster Method = "foster_1992"
	// MethodMonteCarlo samples the combined position covariance directly.
	MethodMonteCarlo Method = "monte_carlo"
)

// DefaultMonteCarloSamples is used when a Monte Carlo request leaves the
// sample count unset.
const DefaultMonteCarloSamples = 100000

// Result is the outcome of a collision probability computation.
type Result struct {
	Probability             float64  `json:"probability"`
	Method                  Method   `json:"method"`
	CombinedHardBodyRadiusM float64  `json:"combined_hard_body_radius_m"`
	MahalanobisDistance     *float64 `json:"mahalanobis_distance,omitempty"`
	Samples                 int      `json:"samples,omitempty"`
}

// ComputePc computes the probability of collision for a single conjunction.
//
// Positions are km and velocities km/s in a common inertial frame. cov1 and
// cov2 are 6x6 state covariances (position then velocity, km and km/s); they
// are summed to form the combined uncertainty. hardBodyRadiusM is the sum of
// the two objects' radii in meters.
//
// A non-positive hard-body radius gives probability zero: two point objects
// cannot collide. Singular covariance geometry also degrades to zero rather
// than failing, while malformed inputs (wrong covariance dimensions, unknown
// method) return an error.
func ComputePc(pos1, vel1, pos2, vel2 [3]float64, cov1, cov2 *mat.SymDense, hardBodyRadiusM float64, method Method, mcSamples int) (Result, error) {
	if cov1.SymmetricDim() != 6 || cov2.SymmetricDim() != 6 {
		return Result{}, fmt.Errorf("covariances must be 6x6, got %dx%d and %dx%d",
			cov1.SymmetricDim(), cov1.SymmetricDim(), cov2.SymmetricDim(), cov2.SymmetricDim())
	}

	relPos := sub3(pos2, pos1)
	relVel := sub3(vel2, vel1)

	var combined mat.SymDense
	combined.AddSym(cov1, cov2)
	posCov := combined.SliceSym(0, 3).(*mat.SymDense)

	result := Result{
		Method:                  method,
		CombinedHardBodyRadiusM: hardBodyRadiusM,
		MahalanobisDistance:     mahalanobis(relPos, posCov),
	}

	if hardBodyRadiusM <= 0 {
		return result, nil
	}
	hbrKm := hardBodyRadiusM / 1000

	switch method {
	case MethodFoster:
		plane := projectToBPlane(relPos, relVel, posCov)
		result.Probability = fosterPc(plane, hbrKm)
	case MethodMonteCarlo:
		if mcSamples <= 0 {
			mcSamples = DefaultMonteCarloSamples
		}
		result.Samples = mcSamples
		result.Probability = monteCarloPc(relPos, relVel, posCov, hbrKm, mcSamples)
	default:
		return Result{}, fmt.Errorf("unknown probability method %q", method)
	}

	return result, nil
}

// mahalanobis returns the miss distance scaled by the combined position
// uncertainty, or nil when the covariance cannot be factorized.
func mahalanobis(relPos [3]float64, posCov *mat.SymDense) *float64 {
	var chol mat.Cholesky
	if !chol.Factorize(posCov) {
		return nil
	}
	d := stat.Mahalanobis(
		mat.NewVecDense(3, []float64{relPos[0], relPos[1], relPos[2]}),
		mat.NewVecDense(3, []float64{0, 0, 0}),
		&chol,
	)
	return &d
}
