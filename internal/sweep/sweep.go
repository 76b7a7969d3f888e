// Package sweep evaluates keff over a parameter grid with a pool of
// concurrent workers. Each grid point is an independent solver run, so the
// sweep parallelizes cleanly; the first failure cancels the rest.
package sweep

import (
	"context"
	"sync"

	"github.com/vk/critgridgo/internal/ctxlog"
	"github.com/vk/critgridgo/internal/search"
)

// Point is one evaluated grid point.
type Point struct {
	Value  float64
	Keff   float64
	StdDev float64
}

// Grid builds an inclusive, evenly spaced grid of parameter values.
func Grid(from, to float64, points int) []float64 {
	if points < 2 {
		return []float64{from}
	}
	values := make([]float64, points)
	step := (to - from) / float64(points-1)
	for i := range values {
		values[i] = from + float64(i)*step
	}
	values[points-1] = to
	return values
}

// Run evaluates every value with the given worker count and returns points
// in grid order regardless of completion order. A worker count below one
// falls back to serial evaluation.
func Run(ctx context.Context, eval search.EvalFunc, values []float64, workers int) ([]Point, error) {
	logger := ctxlog.FromContext(ctx)
	if workers < 1 {
		workers = 1
	}
	if workers > len(values) {
		workers = len(values)
	}
	logger.Debug("Sweep starting.", "points", len(values), "workers", workers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	points := make([]Point, len(values))

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for workerID := 0; workerID < workers; workerID++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			workerLogger := logger.With("workerID", workerID)
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				value := values[i]
				workerLogger.Debug("Worker picked up grid point.", "value", value)
				obs, err := eval(ctx, value)
				if err != nil {
					workerLogger.Error("Grid point evaluation failed.", "value", value, "error", err)
					fail(err)
					return
				}
				// Distinct indices, no lock needed.
				points[i] = Point{Value: value, Keff: obs.Keff, StdDev: obs.StdDev}
				workerLogger.Debug("Grid point evaluated.", "value", value, "keff", obs.Keff)
			}
		}(workerID)
	}

feed:
	for i := range values {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debug("Sweep finished.", "points", len(points))
	return points, nil
}
