package tle

import "time"

// TLE is a parsed two-line element set for one catalog object.
// It carries the classical elements only; converting them into a
// propagatable model is the propagation package's job.
type TLE struct {
	NORADID          int
	Name             string
	Epoch            time.Time
	InclinationDeg   float64
	RAANDeg          float64
	Eccentricity     float64
	ArgPerigeeDeg    float64
	MeanAnomalyDeg   float64
	MeanMotionRevDay float64
	BStar            float64
	Line1            string
	Line2            string
}
