package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/conjunct/conjunct/internal/cdm"
	"github.com/conjunct/conjunct/internal/probability"
	"github.com/conjunct/conjunct/internal/propagation"
	"github.com/conjunct/conjunct/internal/risk"
	"github.com/conjunct/conjunct/internal/screening"
	"github.com/conjunct/conjunct/internal/tle"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: loadLogLevel(),
	}))

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "screen":
		err = runScreen(ctx, logger, os.Args[2:])
	case "catalog":
		err = runCatalog(ctx, logger, os.Args[2:])
	case "pc":
		err = runPc(logger, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: conjunct <command> [flags]

commands:
  screen   screen one or more primaries against a catalog
  catalog  screen all catalog pairs against each other
  pc       compute collision probability and risk for a CDM`)
}

func runScreen(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("screen", flag.ExitOnError)
	tleFile := fs.String("tle", "", "path to TLE catalog file (required)")
	primaries := fs.String("primary", "", "comma-separated primary NORAD IDs (required)")
	days := fs.Float64("days", 3, "screening window in days from each primary's epoch")
	threshold := fs.Float64("threshold", 10, "conjunction threshold in km")
	step := fs.Float64("step", 5, "coarse scan step in minutes")
	fs.Parse(args)

	catalog, err := loadCatalog(*tleFile, logger)
	if err != nil {
		return err
	}

	ids, err := parseIDs(*primaries)
	if err != nil {
		return err
	}
	byID := make(map[int]tle.TLE, len(catalog))
	for _, e := range catalog {
		byID[e.NORADID] = e
	}
	primaryTLEs := make([]tle.TLE, 0, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			return fmt.Errorf("primary %d not found in catalog", id)
		}
		primaryTLEs = append(primaryTLEs, e)
	}

	screener := newScreener(logger)
	events, err := screener.Screen(ctx, screening.Request{
		Primaries:   primaryTLEs,
		Catalog:     catalog,
		Days:        *days,
		ThresholdKm: *threshold,
		StepMinutes: *step,
	})
	if err != nil {
		return err
	}
	return writeEvents(events)
}

func runCatalog(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("catalog", flag.ExitOnError)
	tleFile := fs.String("tle", "", "path to TLE catalog file (required)")
	hours := fs.Float64("hours", 24, "screening horizon in hours")
	step := fs.Float64("step", 1, "scan step in minutes")
	threshold := fs.Float64("threshold", 5, "close-pair threshold in km")
	maxAge := fs.Float64("max-age", 0, "drop element sets older than this many days (0 disables)")
	fs.Parse(args)

	catalog, err := loadCatalog(*tleFile, logger)
	if err != nil {
		return err
	}

	screener := newScreener(logger)
	events, err := screener.ScreenCatalog(ctx, screening.CatalogRequest{
		Catalog:     catalog,
		Hours:       *hours,
		StepMinutes: *step,
		ThresholdKm: *threshold,
		MaxAgeDays:  *maxAge,
	})
	if err != nil {
		return err
	}
	return writeEvents(events)
}

func runPc(logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("pc", flag.ExitOnError)
	cdmFile := fs.String("cdm", "", "path to CDM file in KVN format (required)")
	hbr := fs.Float64("hbr", 20, "combined hard-body radius in meters")
	method := fs.String("method", string(probability.MethodFoster), "probability method (foster_1992 or monte_carlo)")
	samples := fs.Int("samples", 0, "Monte Carlo sample count (0 uses the default)")
	fs.Parse(args)

	if *cdmFile == "" {
		return fmt.Errorf("-cdm is required")
	}
	f, err := os.Open(*cdmFile)
	if err != nil {
		return fmt.Errorf("open CDM: %w", err)
	}
	defer f.Close()

	msg, err := cdm.Parse(f)
	if err != nil {
		return err
	}
	if msg.Object1.Covariance == nil || msg.Object2.Covariance == nil {
		return fmt.Errorf("CDM %s is missing covariance data", msg.MessageID)
	}
	logger.Info("CDM loaded",
		"message_id", msg.MessageID,
		"object1", msg.Object1.Designator,
		"object2", msg.Object2.Designator,
		"tca", msg.TCA,
	)

	pc, err := probability.ComputePc(
		msg.Object1.Position, msg.Object1.Velocity,
		msg.Object2.Position, msg.Object2.Velocity,
		msg.Object1.Covariance, msg.Object2.Covariance,
		*hbr, probability.Method(*method), *samples,
	)
	if err != nil {
		return err
	}

	assessment := risk.Assess(risk.Input{
		MissDistanceKm:      msg.MissDistanceKm,
		RelativeVelocityKmS: msg.RelativeSpeedKmS,
		Object1Maneuverable: msg.Object1.Maneuverable == "YES",
		Object2Maneuverable: msg.Object2.Maneuverable == "YES",
		TCA:                 msg.TCA,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		MessageID   string             `json:"message_id"`
		Probability probability.Result `json:"probability"`
		Risk        risk.Assessment    `json:"risk"`
	}{msg.MessageID, pc, assessment})
}

func newScreener(logger *slog.Logger) *screening.Screener {
	pool := propagation.NewWorkerPool(loadWorkers(logger), logger)
	return screening.NewScreener(propagation.SGP4Provider{}, pool, screening.WGS84(), logger)
}

func loadCatalog(path string, logger *slog.Logger) ([]tle.TLE, error) {
	if path == "" {
		return nil, fmt.Errorf("-tle is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	entries, err := tle.Parse(f, logger)
	if err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	logger.Info("catalog loaded", "path", path, "entries", len(entries))
	return entries, nil
}

func parseIDs(s string) ([]int, error) {
	if s == "" {
		return nil, fmt.Errorf("-primary is required")
	}
	var ids []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid NORAD ID %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("-primary is required")
	}
	return ids, nil
}

func writeEvents(events []screening.ConjunctionEvent) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if events == nil {
		events = []screening.ConjunctionEvent{}
	}
	return enc.Encode(events)
}

func loadWorkers(logger *slog.Logger) int {
	workers := runtime.NumCPU()
	if v := os.Getenv("CONJUNCT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid CONJUNCT_WORKERS value, using default", "value", v, "default", workers)
		} else {
			workers = n
		}
	}
	return workers
}

func loadLogLevel() slog.Level {
	switch strings.ToLower(os.Getenv("CONJUNCT_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
