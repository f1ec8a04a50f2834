package pred

import (
	"runtime"
	"sort"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/exp/constraints"
)

// Index is the "idx" successor data structure: keys are split into high
// and low bits, and a table over the high bits narrows every query to a
// bucket that is finished by binary search. The table is built in
// parallel, each worker seeding its first boundary from its left
// neighbor's last key.
type Index[T constraints.Unsigned] struct {
	data   []T
	loBits uint
	min    T
	max    T
	hiIdx  []int32
}

// NewIndex builds the high-bit table over a sorted slice. loBits is the
// number of low bits ignored by the table; 7 works well for the string
// synchronizing sets this index is used with.
func NewIndex[T constraints.Unsigned](data []T, loBits uint) (*Index[T], error) {
	return NewIndexThreads(data, loBits, runtime.GOMAXPROCS(0))
}

// NewIndexThreads is NewIndex with an explicit construction fan-out.
func NewIndexThreads[T constraints.Unsigned](data []T, loBits uint, threads int) (*Index[T], error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	idx := &Index[T]{
		data:   data,
		loBits: loBits,
		min:    data[0],
		max:    data[len(data)-1],
	}
	idx.hiIdx = make([]int32, (uint64(idx.max)>>loBits)+2)

	if threads <= 1 || len(data) < 2*threads {
		threads = 1
	}
	p := pool.New().WithMaxGoroutines(threads)
	sliceSize := len(data) / threads
	for t := 0; t < threads; t++ {
		start := t * sliceSize
		end := start + sliceSize
		if t == threads-1 {
			end = len(data)
		}
		p.Go(func() {
			var prevKey uint64
			if start > 0 {
				prevKey = idx.hi(data[start-1])
			}
			for i := start; i < end; i++ {
				curKey := idx.hi(data[i])
				if curKey > prevKey {
					for key := prevKey + 1; key <= curKey; key++ {
						idx.hiIdx[key] = int32(i)
					}
					prevKey = curKey
				}
			}
		})
	}
	p.Wait()
	idx.hiIdx[idx.hi(idx.max)+1] = int32(len(data))
	return idx, nil
}

func (idx *Index[T]) hi(x T) uint64 {
	return uint64(x) >> idx.loBits
}

// Predecessor returns the greatest element <= x.
func (idx *Index[T]) Predecessor(x T) Result {
	if x < idx.min {
		return Result{}
	}
	if x >= idx.max {
		return Result{true, len(idx.data) - 1}
	}
	key := idx.hi(x)
	p, q := int(idx.hiIdx[key]), int(idx.hiIdx[key+1])
	bucket := idx.data[p:q]
	off := sort.Search(len(bucket), func(i int) bool { return bucket[i] > x })
	return Result{true, p + off - 1}
}

// Successor returns the smallest element >= x.
func (idx *Index[T]) Successor(x T) Result {
	if x <= idx.min {
		return Result{true, 0}
	}
	if x > idx.max {
		return Result{}
	}
	key := idx.hi(x)
	p, q := int(idx.hiIdx[key]), int(idx.hiIdx[key+1])
	bucket := idx.data[p:q]
	off := sort.Search(len(bucket), func(i int) bool { return bucket[i] >= x })
	return Result{true, p + off}
}

// Contains reports whether x is present in the array.
func (idx *Index[T]) Contains(x T) bool {
	r := idx.Successor(x)
	return r.Exists && idx.data[r.Pos] == x
}
