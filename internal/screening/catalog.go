package screening

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/conjunct/conjunct/internal/metrics"
	"github.com/conjunct/conjunct/internal/propagation"
	"github.com/conjunct/conjunct/internal/tle"
)

// CatalogRequest holds the parameters for an all-pairs catalog screen.
type CatalogRequest struct {
	Catalog     []tle.TLE
	Hours       float64
	StepMinutes float64
	ThresholdKm float64
	MaxAgeDays  float64   // 0 disables staleness filtering
	Reference   time.Time // zero means now (UTC)
}

// FilterStale drops element sets older than maxAgeDays relative to the
// reference time. Age is |reference - epoch|; the cutoff is inclusive.
func FilterStale(catalog []tle.TLE, maxAgeDays float64, reference time.Time, logger *slog.Logger) []tle.TLE {
	cutoff := time.Duration(maxAgeDays * 24 * float64(time.Hour))
	fresh := make([]tle.TLE, 0, len(catalog))
	for _, e := range catalog {
		age := reference.Sub(e.Epoch)
		if age < 0 {
			age = -age
		}
		if age <= cutoff {
			fresh = append(fresh, e)
		}
	}
	logger.Debug("staleness filter", "kept", len(fresh), "total", len(catalog), "max_age_days", maxAgeDays)
	return fresh
}

// ScreenCatalog finds all close pairs in the catalog over the time horizon,
// independent of any single primary.
//
// Every surviving object is batch-propagated to every grid instant in one
// pass (objects × instants). Each instant is then screened independently:
// objects with a valid state go into a spatial index and all pairs within
// the threshold are enumerated, keeping a running minimum-distance record
// per unordered pair. This is the practical choice for whole-catalog runs,
// where the per-primary pipeline would degenerate to quadratic work.
func (s *Screener) ScreenCatalog(ctx context.Context, req CatalogRequest) ([]ConjunctionEvent, error) {
	if req.Hours <= 0 || req.StepMinutes <= 0 || req.ThresholdKm <= 0 {
		return nil, fmt.Errorf("invalid catalog request: hours=%v step_minutes=%v threshold_km=%v",
			req.Hours, req.StepMinutes, req.ThresholdKm)
	}

	reference := req.Reference
	if reference.IsZero() {
		reference = time.Now().UTC()
	}

	catalog := req.Catalog
	if req.MaxAgeDays > 0 {
		catalog = FilterStale(catalog, req.MaxAgeDays, reference, s.logger)
	}
	if len(catalog) < 2 {
		s.logger.Info("catalog screen: fewer than 2 objects, nothing to screen")
		return nil, nil
	}

	start := time.Now()
	s.logger.Info("catalog screen",
		"objects", len(catalog),
		"hours", req.Hours,
		"step_minutes", req.StepMinutes,
		"threshold_km", req.ThresholdKm,
	)

	ephs := make([]propagation.Ephemeris, 0, len(catalog))
	noradIDs := make([]int, 0, len(catalog))
	for _, e := range catalog {
		eph, err := s.provider.Ephemeris(e)
		if err != nil {
			s.logger.Warn("ephemeris init failed, dropping from catalog", "norad_id", e.NORADID, "error", err)
			continue
		}
		ephs = append(ephs, eph)
		noradIDs = append(noradIDs, e.NORADID)
	}
	if len(ephs) < 2 {
		return nil, nil
	}

	// One time grid for the whole horizon.
	steps := int(req.Hours*60/req.StepMinutes) + 1
	stepDur := time.Duration(req.StepMinutes * float64(time.Minute))
	times := make([]time.Time, steps)
	for i := range times {
		times[i] = reference.Add(time.Duration(i) * stepDur)
	}

	s.logger.Debug("propagating grid", "objects", len(ephs), "instants", steps)
	states, valid := s.pool.PropagateGrid(ctx, ephs, times)

	// Best record per unordered pair of catalog indices.
	pairs := make(map[pairKey]*ConjunctionEvent)

	for ti, t := range times {
		if ctx.Err() != nil {
			break
		}

		points := make(objectPoints, 0, len(ephs))
		for i := range ephs {
			if valid[i][ti] {
				points = append(points, objectPoint{pos: states[i][ti].Position, idx: i})
			}
		}
		if len(points) < 2 {
			continue
		}

		for _, pr := range pairsWithin(points, req.ThresholdKm) {
			a, b := pr[0], pr[1]
			key := pairKey{a, b}
			dist := separation(states[a][ti].Position, states[b][ti].Position)

			if existing, ok := pairs[key]; !ok || dist < existing.MissDistanceKm {
				relSpeed := separation(states[a][ti].Velocity, states[b][ti].Velocity)
				pairs[key] = &ConjunctionEvent{
					PrimaryNORADID:   noradIDs[a],
					SecondaryNORADID: noradIDs[b],
					TCA:              t,
					MissDistanceKm:   round4(dist),
					RelativeSpeedKmS: round4(relSpeed),
				}
			}
		}
	}

	events := make([]ConjunctionEvent, 0, len(pairs))
	for _, ev := range pairs {
		events = append(events, *ev)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].MissDistanceKm < events[j].MissDistanceKm
	})

	s.logger.Info("catalog screen complete", "close_pairs", len(events))
	metrics.RecordScreening("catalog", time.Since(start), len(events))
	return events, nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
