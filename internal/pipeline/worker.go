package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunParallel calls fn for every index in [0, n) on a pool of at most
// workers goroutines. The first error cancels the remaining work and is
// returned. fn must only touch state owned by its index.
func RunParallel(ctx context.Context, workers, n int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return ctx.Err()
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		// Stop enqueueing once the run is cancelled
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// errgroup only reports errors from fn; surface a parent cancellation too
	return ctx.Err()
}
