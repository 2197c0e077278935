package propagation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/conjunct/conjunct/internal/metrics"
)

// WorkerPool manages a fixed number of goroutines for parallel propagation.
// The screening algorithms themselves are sequential; the pool only
// parallelizes the compute-bound model evaluations inside one batch call.
type WorkerPool struct {
	workers int
	logger  *slog.Logger
}

// NewWorkerPool creates a worker pool with the given number of workers.
func NewWorkerPool(workers int, logger *slog.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		workers: workers,
		logger:  logger,
	}
}

// PropagateBatch propagates every ephemeris to the target time.
// Results are index-aligned with ephs; valid[i] is false for objects whose
// propagation failed at that instant. Individual failures are never fatal.
func (wp *WorkerPool) PropagateBatch(ctx context.Context, ephs []Ephemeris, targetTime time.Time) ([]StateVector, []bool) {
	if len(ephs) == 0 {
		return nil, nil
	}

	states := make([]StateVector, len(ephs))
	valid := make([]bool, len(ephs))

	start := time.Now()
	wp.run(ctx, len(ephs), func(i int) {
		states[i], valid[i] = ephs[i].Propagate(targetTime)
	})

	successCount := 0
	for _, ok := range valid {
		if ok {
			successCount++
		}
	}
	metrics.RecordPropagation(time.Since(start), successCount, len(ephs)-successCount)

	return states, valid
}

// PropagateGrid propagates every ephemeris to every grid instant in one
// pass. The result shape is objects × instants: states[i][j] is object i at
// times[j]. Each worker owns whole objects, so one row is filled by one
// goroutine.
func (wp *WorkerPool) PropagateGrid(ctx context.Context, ephs []Ephemeris, times []time.Time) ([][]StateVector, [][]bool) {
	if len(ephs) == 0 || len(times) == 0 {
		return nil, nil
	}

	states := make([][]StateVector, len(ephs))
	valid := make([][]bool, len(ephs))

	start := time.Now()
	wp.run(ctx, len(ephs), func(i int) {
		row := make([]StateVector, len(times))
		ok := make([]bool, len(times))
		for j, t := range times {
			row[j], ok[j] = ephs[i].Propagate(t)
		}
		states[i] = row
		valid[i] = ok
	})

	var successCount, errorCount int
	for i := range valid {
		for _, ok := range valid[i] {
			if ok {
				successCount++
			} else {
				errorCount++
			}
		}
	}
	metrics.RecordPropagation(time.Since(start), successCount, errorCount)

	return states, valid
}

// run executes fn(0..n-1) across the pool, stopping early when ctx is done.
// Unprocessed indices keep their zero values (valid=false).
func (wp *WorkerPool) run(ctx context.Context, n int, fn func(i int)) {
	jobs := make(chan int, wp.workers*2)

	var wg sync.WaitGroup
	for w := 0; w < wp.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			wp.logger.Warn("propagation batch cancelled", "submitted", i, "total", n)
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}
