package screening

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/conjunct/conjunct/internal/tle"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Real element sets, all from 2024 day 045 (Feb 14).
var (
	issTLE = tle.TLE{
		NORADID:          25544,
		Name:             "ISS (ZARYA)",
		Epoch:            time.Date(2024, 2, 14, 13, 10, 30, 0, time.UTC),
		Eccentricity:     0.0004948,
		MeanMotionRevDay: 15.49583488,
		Line1:            "1 25544U 98067A   24045.54896019  .00016717  00000-0  30093-3 0  9993",
		Line2:            "2 25544  51.6412 207.4925 0004948 290.5508 178.9792 15.49583488439596",
	}
	cssTLE = tle.TLE{
		NORADID:          48274,
		Name:             "CSS (TIANHE)",
		Epoch:            time.Date(2024, 2, 14, 12, 3, 46, 0, time.UTC),
		Eccentricity:     0.0005372,
		MeanMotionRevDay: 15.62096269,
		Line1:            "1 48274U 21035A   24045.50261574  .00021540  00000-0  25163-3 0  9993",
		Line2:            "2 48274  41.4681 279.1498 0005372 149.8847 345.3740 15.62096269157018",
	}
	hubbleTLE = tle.TLE{
		NORADID:          20580,
		Name:             "HUBBLE",
		Epoch:            time.Date(2024, 2, 14, 13, 18, 53, 0, time.UTC),
		Eccentricity:     0.0002622,
		MeanMotionRevDay: 15.09435694,
		Line1:            "1 20580U 90037B   24045.55478014  .00001456  00000-0  73052-4 0  9994",
		Line2:            "2 20580  28.4701  41.0696 0002622 348.3544 140.2428 15.09435694872912",
	}
	geoTLE = tle.TLE{
		NORADID:          36516,
		Name:             "SES-1",
		Epoch:            time.Date(2024, 2, 14, 9, 30, 0, 0, time.UTC),
		Eccentricity:     0.0000567,
		MeanMotionRevDay: 1.00271953,
		Line1:            "1 36516U 10012A   24045.39583333  .00000112  00000-0  00000+0 0  9991",
		Line2:            "2 36516   0.0254 268.0254 0000567 142.5432 240.3076  1.00271953 50780",
	}
)

func TestApsidesISS(t *testing.T) {
	perigee, apogee := WGS84().apsides(issTLE)

	// ISS orbits around 400-420 km altitude, nearly circular.
	if perigee < 380 || perigee > 450 {
		t.Errorf("perigee = %.1f km, want 380-450", perigee)
	}
	if apogee < 380 || apogee > 450 {
		t.Errorf("apogee = %.1f km, want 380-450", apogee)
	}
	if apogee-perigee > 10 {
		t.Errorf("apogee-perigee = %.1f km, want < 10 for near-circular orbit", apogee-perigee)
	}
	if apogee < perigee {
		t.Errorf("apogee %.1f below perigee %.1f", apogee, perigee)
	}
}

func TestApsidesGEO(t *testing.T) {
	perigee, apogee := WGS84().apsides(geoTLE)

	if perigee < 35000 || perigee > 36500 {
		t.Errorf("perigee = %.1f km, want 35000-36500", perigee)
	}
	if apogee < 35000 || apogee > 36500 {
		t.Errorf("apogee = %.1f km, want 35000-36500", apogee)
	}
}

func TestPrefilterRemovesGEO(t *testing.T) {
	// A ~400 km orbit and a ~35786 km orbit cannot meet at a 10 km
	// threshold; the pair must die before any propagation.
	filtered := Prefilter(WGS84(), issTLE, []tle.TLE{geoTLE}, 10.0)
	if len(filtered) != 0 {
		t.Errorf("expected GEO candidate eliminated, got %d survivors", len(filtered))
	}
}

func TestPrefilterKeepsOverlappingLEO(t *testing.T) {
	filtered := Prefilter(WGS84(), issTLE, []tle.TLE{cssTLE, hubbleTLE}, 150.0)
	if len(filtered) != 2 {
		t.Fatalf("expected both LEO candidates kept, got %d", len(filtered))
	}
}

func TestPrefilterExcludesSelf(t *testing.T) {
	filtered := Prefilter(WGS84(), issTLE, []tle.TLE{issTLE}, 10.0)
	if len(filtered) != 0 {
		t.Errorf("expected self excluded, got %d survivors", len(filtered))
	}
}

func TestPrefilterMixedCatalog(t *testing.T) {
	filtered := Prefilter(WGS84(), issTLE, []tle.TLE{cssTLE, geoTLE, issTLE}, 150.0)
	if len(filtered) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(filtered))
	}
	if filtered[0].NORADID != cssTLE.NORADID {
		t.Errorf("survivor = %d, want %d", filtered[0].NORADID, cssTLE.NORADID)
	}
}

func TestPrefilterThresholdWidensBand(t *testing.T) {
	// ISS (~415 km) vs Hubble (~530 km): outside a 10 km pad, inside 150 km.
	tight := Prefilter(WGS84(), issTLE, []tle.TLE{hubbleTLE}, 10.0)
	loose := Prefilter(WGS84(), issTLE, []tle.TLE{hubbleTLE}, 150.0)
	if len(tight) != 0 {
		t.Errorf("10 km threshold: expected Hubble eliminated, got %d", len(tight))
	}
	if len(loose) != 1 {
		t.Errorf("150 km threshold: expected Hubble kept, got %d", len(loose))
	}
}
