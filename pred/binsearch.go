package pred

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// BinSearch answers predecessor and successor queries by binary search
// over the whole array, clipped against the cached minimum and maximum.
type BinSearch[T constraints.Integer] struct {
	data []T
	min  T
	max  T
}

// NewBinSearch wraps a sorted slice. The slice is retained, not copied.
func NewBinSearch[T constraints.Integer](data []T) (*BinSearch[T], error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	return &BinSearch[T]{data: data, min: data[0], max: data[len(data)-1]}, nil
}

// lowerBound returns the first index with data[i] >= x.
func (b *BinSearch[T]) lowerBound(x T) int {
	return sort.Search(len(b.data), func(i int) bool { return b.data[i] >= x })
}

// upperBound returns the first index with data[i] > x.
func (b *BinSearch[T]) upperBound(x T) int {
	return sort.Search(len(b.data), func(i int) bool { return b.data[i] > x })
}

// Predecessor returns the greatest element <= x.
func (b *BinSearch[T]) Predecessor(x T) Result {
	if x < b.min {
		return Result{}
	}
	return Result{true, b.upperBound(x) - 1}
}

// PredecessorStrict returns the greatest element < x.
func (b *BinSearch[T]) PredecessorStrict(x T) Result {
	if x <= b.min {
		return Result{}
	}
	return Result{true, b.lowerBound(x) - 1}
}

// Successor returns the smallest element >= x.
func (b *BinSearch[T]) Successor(x T) Result {
	if x > b.max {
		return Result{}
	}
	return Result{true, b.lowerBound(x)}
}

// SuccessorStrict returns the smallest element > x.
func (b *BinSearch[T]) SuccessorStrict(x T) Result {
	if x >= b.max {
		return Result{}
	}
	return Result{true, b.upperBound(x)}
}

// Contains reports whether x is present in the array.
func (b *BinSearch[T]) Contains(x T) bool {
	i := b.lowerBound(x)
	return i < len(b.data) && b.data[i] == x
}
