package runner

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Target is one project for RunAll.
type Target struct {
	ProjectID uint32
	Dir       string
	Args      []string
}

// RunAll runs targets with at most concurrency runs at once. Results are
// returned in target order. Failing tests are reported in the results; the
// returned error is only set when ctx ends before every run started.
func (r *Runner) RunAll(ctx context.Context, targets []Target, concurrency int) ([]Result, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]Result, len(targets))
	sem := semaphore.NewWeighted(int64(concurrency))
	g, gctx := errgroup.WithContext(ctx)

	for i, target := range targets {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			h, err := r.Start(gctx, target.ProjectID, target.Dir, target.Args)
			if err != nil {
				results[i] = Result{ProjectID: target.ProjectID, Err: err}
				return nil
			}
			results[i] = h.Wait()
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
