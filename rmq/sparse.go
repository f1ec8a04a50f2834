package rmq

import (
	"math/bits"
	"runtime"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/exp/constraints"
)

// Sparse is the O(n log n)-space sparse-table RMQ. Level l of the table
// stores, for every position i, the argmin over the 2^(l+1) elements
// starting at i.
type Sparse[K constraints.Ordered] struct {
	data   []K
	levels [][]int32
}

// NewSparse builds a sparse table over data. The slice is retained, not
// copied; it must stay unchanged for the lifetime of the index.
func NewSparse[K constraints.Ordered](data []K) (*Sparse[K], error) {
	return NewSparseThreads(data, runtime.GOMAXPROCS(0))
}

// NewSparseThreads is NewSparse with an explicit construction fan-out.
func NewSparseThreads[K constraints.Ordered](data []K, threads int) (*Sparse[K], error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	s := &Sparse[K]{data: data}
	numLevels := bits.Len(uint(len(data))) - 1
	if numLevels == 0 {
		return s, nil
	}
	s.levels = make([][]int32, numLevels)

	s.levels[0] = make([]int32, len(data)-1)
	parallelFor(threads, len(data)-1, func(from, to int) {
		for i := from; i < to; i++ {
			if data[i] <= data[i+1] {
				s.levels[0][i] = int32(i)
			} else {
				s.levels[0][i] = int32(i + 1)
			}
		}
	})

	for l := 1; l < numLevels; l++ {
		span := 1 << l
		s.levels[l] = make([]int32, len(data)-(2<<l)+1)
		prev := s.levels[l-1]
		cur := s.levels[l]
		parallelFor(threads, len(cur), func(from, to int) {
			for i := from; i < to; i++ {
				lm, rm := prev[i], prev[i+span]
				if data[lm] <= data[rm] {
					cur[i] = lm
				} else {
					cur[i] = rm
				}
			}
		})
	}
	return s, nil
}

// RMQ returns the index of the smallest element in
// data[min(i,j)..max(i,j)].
func (s *Sparse[K]) RMQ(i, j int) int {
	if i == j {
		return i
	}
	return s.RMQUneq(i, j)
}

// RMQUneq is RMQ with an i != j precondition.
func (s *Sparse[K]) RMQUneq(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return s.RMQLR(i, j)
}

// RMQLR is RMQ with an l < r precondition.
func (s *Sparse[K]) RMQLR(left, right int) int {
	intervalLog := bits.Len(uint(right-left+1)) - 1
	maxPowerSpan := 1 << intervalLog
	level := s.levels[intervalLog-1]
	lm := level[left]
	rm := level[right+1-maxPowerSpan]
	if s.data[lm] <= s.data[rm] {
		return int(lm)
	}
	return int(rm)
}

// RMQShifted returns the index of the smallest element in
// data[min(i,j)+1..max(i,j)]. Requires i != j.
func (s *Sparse[K]) RMQShifted(i, j int) int {
	if i > j {
		i, j = j, i
	}
	left, right := i+1, j
	// RMQLR cannot be used directly because the interval may hold a
	// single element.
	if right-left+1 <= 2 {
		if s.data[left] <= s.data[right] {
			return left
		}
		return right
	}
	return s.RMQLR(left, right)
}

// parallelFor splits [0, n) into one contiguous slice per worker and runs
// body on each; it returns after all workers finish.
func parallelFor(threads, n int, body func(from, to int)) {
	if threads <= 1 || n < 2*threads {
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
