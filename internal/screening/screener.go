package screening

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/conjunct/conjunct/internal/metrics"
	"github.com/conjunct/conjunct/internal/propagation"
	"github.com/conjunct/conjunct/internal/tle"
)

// Screener runs conjunction screens over a catalog of element sets.
type Screener struct {
	provider propagation.Provider
	pool     *propagation.WorkerPool
	consts   Constants
	logger   *slog.Logger
}

// NewScreener creates a Screener using the given propagation provider.
func NewScreener(provider propagation.Provider, pool *propagation.WorkerPool, consts Constants, logger *slog.Logger) *Screener {
	return &Screener{
		provider: provider,
		pool:     pool,
		consts:   consts,
		logger:   logger,
	}
}

// Request holds the parameters for a per-primary screening run.
type Request struct {
	Primaries   []tle.TLE
	Catalog     []tle.TLE
	Days        float64 // screening window from each primary's epoch
	ThresholdKm float64
	StepMinutes float64 // coarse scan cadence
}

// Screen finds close approaches between each primary and the catalog.
//
// Pipeline per primary: geometric prefilter, coarse time-stepped batch
// scan, per-window TCA refinement, duplicate merging. Per-object
// propagation failures are skipped; a failed primary step only degrades
// coverage for that instant. Returned events are sorted ascending by miss
// distance. A cancelled context ends the scan early with the events found
// so far.
func (s *Screener) Screen(ctx context.Context, req Request) ([]ConjunctionEvent, error) {
	if req.Days <= 0 || req.StepMinutes <= 0 || req.ThresholdKm <= 0 {
		return nil, fmt.Errorf("invalid screen request: days=%v step_minutes=%v threshold_km=%v",
			req.Days, req.StepMinutes, req.ThresholdKm)
	}

	start := time.Now()
	step := time.Duration(req.StepMinutes * float64(time.Minute))
	events := newEventSet()

	for _, primary := range req.Primaries {
		if ctx.Err() != nil {
			break
		}
		s.screenPrimary(ctx, primary, req, step, events)
	}

	out := events.sorted()
	metrics.RecordScreening("screen", time.Since(start), len(out))
	return out, nil
}

func (s *Screener) screenPrimary(ctx context.Context, primary tle.TLE, req Request, step time.Duration, events *eventSet) {
	candidates := Prefilter(s.consts, primary, req.Catalog, req.ThresholdKm)
	if len(candidates) == 0 {
		s.logger.Debug("no candidates after prefilter", "norad_id", primary.NORADID)
		return
	}

	primaryEph, err := s.provider.Ephemeris(primary)
	if err != nil {
		s.logger.Warn("primary ephemeris init failed, skipping", "norad_id", primary.NORADID, "error", err)
		return
	}

	// Drop candidates whose model cannot be initialized; keep the
	// survivors index-aligned with their ephemerides.
	candEphs := make([]propagation.Ephemeris, 0, len(candidates))
	kept := candidates[:0]
	for _, cand := range candidates {
		eph, err := s.provider.Ephemeris(cand)
		if err != nil {
			s.logger.Warn("candidate ephemeris init failed, skipping", "norad_id", cand.NORADID, "error", err)
			continue
		}
		candEphs = append(candEphs, eph)
		kept = append(kept, cand)
	}
	candidates = kept
	if len(candidates) == 0 {
		return
	}

	s.logger.Debug("screening primary",
		"norad_id", primary.NORADID,
		"candidates", len(candidates),
		"days", req.Days,
		"threshold_km", req.ThresholdKm,
	)

	startTime := primary.Epoch
	endTime := startTime.Add(time.Duration(req.Days * float64(24) * float64(time.Hour)))

	// Coarse scan: batch-propagate primary plus all candidates at each step.
	batch := append([]propagation.Ephemeris{primaryEph}, candEphs...)
	windows := make(map[int][]window)

	for current := startTime; !current.After(endTime); current = current.Add(step) {
		if ctx.Err() != nil {
			return
		}

		states, valid := s.pool.PropagateBatch(ctx, batch, current)
		if !valid[0] {
			continue
		}
		primPos := states[0].Position

		for i, cand := range candidates {
			idx := i + 1 // primary occupies slot 0
			if !valid[idx] {
				continue
			}
			dist := separation(primPos, states[idx].Position)
			if dist <= req.ThresholdKm {
				windows[cand.NORADID] = append(windows[cand.NORADID], window{
					t:          current,
					distanceKm: dist,
					state:      states[idx],
				})
			}
		}
	}

	// Refine each flagged window and merge duplicates.
	initialStep := step / 2
	for i, cand := range candidates {
		for _, w := range windows[cand.NORADID] {
			if ctx.Err() != nil {
				return
			}
			tca, missKm, relSpeed := refineTCA(primaryEph, candEphs[i], w.t.Add(-step/2), w.t.Add(step/2), initialStep)
			if missKm <= req.ThresholdKm {
				events.merge(ConjunctionEvent{
					PrimaryNORADID:   primary.NORADID,
					SecondaryNORADID: cand.NORADID,
					TCA:              tca,
					MissDistanceKm:   missKm,
					RelativeSpeedKmS: relSpeed,
				})
			}
		}
	}
}
