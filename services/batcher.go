package services

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency is the window used for upstream fan-out unless configured
const DefaultBatchConcurrency = 5

// RunBatched applies op to items in contiguous windows of maxConcurrency.
// All calls of a window run concurrently and the next window starts only once
// the whole window has returned. results[i] always belongs to items[i].
//
// The first op error stops later windows; it is returned once the current
// window has drained, together with the results collected so far.
func RunBatched[T, R any](ctx context.Context, items []T, maxConcurrency int, op func(ctx context.Context, index int, item T) (R, error)) ([]R, error) {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	results := make([]R, len(items))
	for start := 0; start < len(items); start += maxConcurrency {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		end := min(start+maxConcurrency, len(items))

		// A plain group: one failing item must not cancel its siblings.
		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				r, err := op(ctx, i, items[i])
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return results, err
		}
	}
	return results, nil
}
