package dualtree

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// forEachQueryRange splits [0, numQueries) into contiguous ranges and runs
// fn on each range from its own goroutine. Ranges do not overlap, so fn may
// write per-query state without synchronization. workers <= 1 runs inline;
// workers == 0 uses one worker per CPU.
func forEachQueryRange(workers, numQueries int, fn func(start, end int) error) error {
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers <= 1 || numQueries <= 1 {
		return fn(0, numQueries)
	}

	perWorker := (numQueries + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * perWorker
		end := min(start+perWorker, numQueries)
		if start >= numQueries {
			break
		}
		g.Go(func() error {
			return fn(start, end)
		})
	}
	return g.Wait()
}
