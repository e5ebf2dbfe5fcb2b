package graph

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FanOut runs op for every item concurrently and hands the results to join,
// ordered by input index. It returns immediately; join is invoked from a
// separate goroutine once every op has returned. limit bounds concurrency
// when positive.
//
// op must not touch the run's State. join runs on the continuing logical
// thread and may.
func FanOut[T, R any](ctx context.Context, limit int, items []T, op func(ctx context.Context, i int, item T) R, join func(results []R)) {
	go func() {
		results := make([]R, len(items))

		var g errgroup.Group
		if limit > 0 {
			g.SetLimit(limit)
		}
		for i, item := range items {
			g.Go(func() error {
				results[i] = op(ctx, i, item)
				return nil
			})
		}
		_ = g.Wait()

		join(results)
	}()
}
