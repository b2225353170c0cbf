package dynamo

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunAll calls fn for every index in [0, n) with at most limit calls in
// flight. The first error cancels ctx for the remaining calls and is
// returned. limit <= 0 means one worker per index.
func RunAll(ctx context.Context, n, limit int, fn func(ctx context.Context, idx int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	return g.Wait()
}
