package delivery

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/delivery-cli/internal/geo"
)

// defaultBatchConcurrency caps parallel evaluations in CheckMany.
const defaultBatchConcurrency = 8

// Outcome pairs a point with its availability result or its error.
type Outcome struct {
	Point  geo.Coordinate
	Result Result
	Err    error
}

// CheckMany runs CheckAvailability for every point with at most concurrency
// goroutines and returns outcomes in input order. Per-point failures are
// recorded in Outcome.Err; only context cancellation fails the batch.
func (e *Evaluator) CheckMany(ctx context.Context, points []geo.Coordinate, concurrency int) ([]Outcome, error) {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	out := make([]Outcome, len(points))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, p := range points {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			res, err := e.CheckAvailability(p)
			out[i] = Outcome{Point: p, Result: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "delivery: check batch")
	}
	return out, nil
}
