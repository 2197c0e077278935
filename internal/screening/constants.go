package screening

// Constants carries the physical constants the geometric prefilter needs.
// Passed in at construction so no package-level mutable state exists.
type Constants struct {
	EarthRadiusKm float64 // equatorial radius
	MuKm3S2       float64 // gravitational parameter GM, km³/s²
}

// WGS84 returns the WGS-84 Earth constants.
func WGS84() Constants {
	return Constants{
		EarthRadiusKm: 6378.137,
		MuKm3S2:       398600.4418,
	}
}
