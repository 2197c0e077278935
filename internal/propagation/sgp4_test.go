package propagation

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/conjunct/conjunct/internal/tle"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Real ISS TLE, epoch 2024-02-14.
var issTLE = tle.TLE{
	NORADID: 25544,
	Name:    "ISS (ZARYA)",
	Epoch:   time.Date(2024, 2, 14, 13, 10, 30, 0, time.UTC),
	Line1:   "1 25544U 98067A   24045.54896019  .00016717  00000-0  30093-3 0  9993",
	Line2:   "2 25544  51.6412 207.4925 0004948 290.5508 178.9792 15.49583488439596",
}

// Tiangong, epoch within an hour of the ISS fixture.
var cssTLE = tle.TLE{
	NORADID: 48274,
	Name:    "CSS (TIANHE)",
	Epoch:   time.Date(2024, 2, 14, 12, 3, 46, 0, time.UTC),
	Line1:   "1 48274U 21035A   24045.50261574  .00021540  00000-0  25163-3 0  9993",
	Line2:   "2 48274  41.4681 279.1498 0005372 149.8847 345.3740 15.62096269157018",
}

func norm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func TestSGP4PropagateISS(t *testing.T) {
	eph, err := NewSGP4(issTLE)
	if err != nil {
		t.Fatalf("NewSGP4: %v", err)
	}

	state, ok := eph.Propagate(issTLE.Epoch)
	if !ok {
		t.Fatal("propagation at epoch failed")
	}

	posMag := norm(state.Position)
	if posMag < 6500 || posMag > 7000 {
		t.Errorf("position magnitude %.1f km outside LEO range", posMag)
	}
	velMag := norm(state.Velocity)
	if velMag < 7.0 || velMag > 8.2 {
		t.Errorf("velocity magnitude %.3f km/s outside LEO range", velMag)
	}
}

func TestSGP4PositionChangesOverTime(t *testing.T) {
	eph, err := NewSGP4(issTLE)
	if err != nil {
		t.Fatalf("NewSGP4: %v", err)
	}

	s0, ok := eph.Propagate(issTLE.Epoch)
	if !ok {
		t.Fatal("propagation at epoch failed")
	}
	s1, ok := eph.Propagate(issTLE.Epoch.Add(10 * time.Minute))
	if !ok {
		t.Fatal("propagation at epoch+10m failed")
	}

	moved := math.Hypot(math.Hypot(s1.Position[0]-s0.Position[0], s1.Position[1]-s0.Position[1]), s1.Position[2]-s0.Position[2])
	if moved < 100 {
		t.Errorf("object moved only %.1f km in 10 minutes", moved)
	}
}

func TestNewSGP4RejectsMalformedLines(t *testing.T) {
	bad := tle.TLE{
		NORADID: 99999,
		Line1:   "1 99999U garbage",
		Line2:   "2 99999",
	}
	if _, err := NewSGP4(bad); err == nil {
		t.Fatal("expected error for malformed TLE lines")
	}
}

func TestSGP4ProviderImplementsProvider(t *testing.T) {
	var p Provider = SGP4Provider{}
	eph, err := p.Ephemeris(issTLE)
	if err != nil {
		t.Fatalf("Ephemeris: %v", err)
	}
	if _, ok := eph.Propagate(issTLE.Epoch); !ok {
		t.Error("provider-built ephemeris failed to propagate at epoch")
	}
}

// failingEphemeris always reports a failed propagation.
type failingEphemeris struct{}

func (failingEphemeris) Propagate(time.Time) (StateVector, bool) {
	return StateVector{}, false
}

func TestPropagateBatchAlignment(t *testing.T) {
	iss, err := NewSGP4(issTLE)
	if err != nil {
		t.Fatalf("NewSGP4 iss: %v", err)
	}
	css, err := NewSGP4(cssTLE)
	if err != nil {
		t.Fatalf("NewSGP4 css: %v", err)
	}

	pool := NewWorkerPool(4, discard)
	ephs := []Ephemeris{iss, failingEphemeris{}, css}
	states, valid := pool.PropagateBatch(context.Background(), ephs, issTLE.Epoch)

	if len(states) != 3 || len(valid) != 3 {
		t.Fatalf("got %d states / %d valid, want 3/3", len(states), len(valid))
	}
	if !valid[0] || valid[1] || !valid[2] {
		t.Fatalf("valid mask = %v, want [true false true]", valid)
	}

	// Index alignment: batch output must equal the direct call.
	direct, ok := iss.Propagate(issTLE.Epoch)
	if !ok {
		t.Fatal("direct propagation failed")
	}
	if states[0] != direct {
		t.Error("batch state for index 0 does not match direct propagation")
	}
}

func TestPropagateBatchEmpty(t *testing.T) {
	pool := NewWorkerPool(2, discard)
	states, valid := pool.PropagateBatch(context.Background(), nil, time.Now())
	if states != nil || valid != nil {
		t.Error("expected nil results for empty batch")
	}
}

func TestPropagateGridShape(t *testing.T) {
	iss, err := NewSGP4(issTLE)
	if err != nil {
		t.Fatalf("NewSGP4: %v", err)
	}
	css, err := NewSGP4(cssTLE)
	if err != nil {
		t.Fatalf("NewSGP4: %v", err)
	}

	times := []time.Time{
		issTLE.Epoch,
		issTLE.Epoch.Add(10 * time.Minute),
		issTLE.Epoch.Add(20 * time.Minute),
	}

	pool := NewWorkerPool(2, discard)
	states, valid := pool.PropagateGrid(context.Background(), []Ephemeris{iss, css}, times)

	if len(states) != 2 {
		t.Fatalf("got %d object rows, want 2", len(states))
	}
	for i := range states {
		if len(states[i]) != 3 || len(valid[i]) != 3 {
			t.Fatalf("object %d: got %d instants, want 3", i, len(states[i]))
		}
		for j, ok := range valid[i] {
			if !ok {
				t.Errorf("object %d instant %d: propagation failed", i, j)
			}
		}
	}

	// Grid row matches the single-time batch at each instant.
	batch, _ := pool.PropagateBatch(context.Background(), []Ephemeris{iss, css}, times[1])
	if states[0][1] != batch[0] || states[1][1] != batch[1] {
		t.Error("grid states disagree with batch states at the same instant")
	}
}

func TestPropagateBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	iss, err := NewSGP4(issTLE)
	if err != nil {
		t.Fatalf("NewSGP4: %v", err)
	}

	// Must return promptly and not panic; unprocessed entries are invalid.
	pool := NewWorkerPool(1, discard)
	states, valid := pool.PropagateBatch(ctx, []Ephemeris{iss, iss, iss}, issTLE.Epoch)
	if len(states) != 3 || len(valid) != 3 {
		t.Fatalf("got %d states / %d valid, want 3/3", len(states), len(valid))
	}
}
