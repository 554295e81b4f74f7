package chunkenc

import (
	"context"
	"runtime"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// nthreads is the process-wide codec worker pool size (spec.md §5:
// "Thread count defaults to detected CPU count"). It's a plain atomic
// counter rather than an actual pool of goroutines: the engine treats the
// codec as a blocking call (spec.md §5), so "the pool" only ever bounds how
// many such blocking calls run concurrently during a bulk operation.
var nthreads = atomic.NewInt64(int64(runtime.NumCPU()))

// SetNThreads configures the process-wide codec concurrency bound.
func SetNThreads(n int) {
	if n < 1 {
		n = 1
	}
	nthreads.Store(int64(n))
}

// NThreads returns the current codec concurrency bound.
func NThreads() int { return int(nthreads.Load()) }

// Parallel runs fn(i) for i in [0,n) bounded by NThreads() concurrent
// goroutines, short-circuiting on first error. Bulk callers (BArray.Copy
// re-encoding every chunk, BTable.Append across columns) use this as the
// concrete realization of spec.md §5's "codec may be internally parallel
// via a worker pool."
func Parallel(ctx context.Context, n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	limit := NThreads()
	if limit > n {
		limit = n
	}
	if limit <= 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, limit)
	for i := 0; i < n; i++ {
		i := i
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return g.Wait()
		}
		g.Go(func() error {
			defer func() { <-sem }()
			return fn(i)
		})
	}
	return g.Wait()
}
