// Package parallel schedules block tasks and splits loops across cores.
//
// Kernels submit one task per row-band through Submit and collect the
// futures with WaitAll; the first failing task fails the whole call.
// Parallelize covers the simpler case of a CPU-bound loop that cannot fail.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Parallelize splits [0, items) into at most GOMAXPROCS contiguous ranges and
// calls fn for each range concurrently. It returns when every range is done.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	workers := min(runtime.GOMAXPROCS(0), items)
	chunk := (items + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < items; start += chunk {
		end := min(start+chunk, items)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}

// ParallelizeWithThreshold runs fn sequentially when items does not exceed
// threshold and falls back to Parallelize otherwise.
func ParallelizeWithThreshold(items, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, fn)
}
