package probability

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// degeneracyEps guards the basis construction against near-zero vectors.
const degeneracyEps = 1e-10

// encounterPlane is the 2D frame perpendicular to the relative velocity at
// close approach, with the relative position and combined position
// covariance projected into it.
type encounterPlane struct {
	miss [2]float64   // km
	cov  *mat.SymDense // 2x2, km^2
}

// projectToBPlane builds the encounter plane from the relative state and the
// combined 3x3 position covariance.
//
// The plane normal is the relative velocity direction. The in-plane axes are
// z_hat x (0,0,1), falling back to z_hat x (1,0,0) when the relative velocity
// is nearly parallel to the z axis. If the relative speed itself is
// degenerate there is no meaningful encounter geometry; the first two
// inertial position axes are used directly.
func projectToBPlane(relPos, relVel [3]float64, posCov *mat.SymDense) encounterPlane {
	var xAxis, yAxis [3]float64

	speed := norm3(relVel)
	if speed < degeneracyEps {
		xAxis = [3]float64{1, 0, 0}
		yAxis = [3]float64{0, 1, 0}
	} else {
		zAxis := scale3(relVel, 1/speed)
		xAxis = cross3(zAxis, [3]float64{0, 0, 1})
		if norm3(xAxis) < degeneracyEps {
			xAxis = cross3(zAxis, [3]float64{1, 0, 0})
		}
		xAxis = scale3(xAxis, 1/norm3(xAxis))
		yAxis = cross3(zAxis, xAxis)
	}

	miss := [2]float64{dot3(xAxis, relPos), dot3(yAxis, relPos)}

	// cov2 = B * posCov * B^T with B rows x_hat, y_hat.
	b := mat.NewDense(2, 3, []float64{
		xAxis[0], xAxis[1], xAxis[2],
		yAxis[0], yAxis[1], yAxis[2],
	})
	var tmp, full mat.Dense
	tmp.Mul(b, posCov)
	full.Mul(&tmp, b.T())

	cov := mat.NewSymDense(2, nil)
	cov.SetSym(0, 0, full.At(0, 0))
	cov.SetSym(0, 1, 0.5*(full.At(0, 1)+full.At(1, 0)))
	cov.SetSym(1, 1, full.At(1, 1))

	return encounterPlane{miss: miss, cov: cov}
}

func norm3(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func dot3(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross3(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func scale3(v [3]float64, s float64) [3]float64 {
	return [3]float64{v[0] * s, v[1] * s, v[2] * s}
}

func sub3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}
