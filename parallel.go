package lce

import (
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// forEachSlice partitions [0, n) into per-worker contiguous slices and
// runs body on each, returning after the barrier.
func forEachSlice(threads, n int, body func(from, to int)) {
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	if threads == 1 || n < 2*threads {
		body(0, n)
		return
	}
	p := pool.New().WithMaxGoroutines(threads)
	sliceSize := n / threads
	for t := 0; t < threads; t++ {
		from := t * sliceSize
		to := from + sliceSize
		if t == threads-1 {
			to = n
		}
		p.Go(func() { body(from, to) })
	}
	p.Wait()
}

// forEachSliceT is forEachSlice with the slice ordinal passed to the
// body. The partition is always threads slices of n/threads elements
// (the last slice takes the remainder), so callers can pre-size
// per-slice result arrays.
func forEachSliceT(threads, n int, body func(t, from, to int)) {
	if threads <= 1 {
		body(0, 0, n)
		return
	}
	p := pool.New().WithMaxGoroutines(threads)
	sliceSize := n / threads
	for t := 0; t < threads; t++ {
		from := t * sliceSize
		to := from + sliceSize
		if t == threads-1 {
			to = n
		}
		p.Go(func() { body(t, from, to) })
	}
	p.Wait()
}

// resolveThreads maps the 0-means-default convention to a concrete
// fan-out.
func resolveThreads(threads int) int {
	if threads <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return threads
}
