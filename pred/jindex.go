package pred

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// JIndex approximates the position of a key with a single linear
// function and records, in one pre-pass, the largest leftward and
// rightward errors of the approximation. A query binary-searches only
// the error window around the approximated position.
type JIndex[T constraints.Unsigned] struct {
	data    []T
	min     T
	max     T
	slope   float64
	maxLErr int64
	maxRErr int64
}

// NewJIndex builds the piecewise-linear index over a sorted slice.
func NewJIndex[T constraints.Unsigned](data []T) (*JIndex[T], error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	j := &JIndex[T]{
		data:  data,
		min:   data[0],
		max:   data[len(data)-1],
		slope: float64(data[len(data)-1]) / float64(len(data)),
	}
	for i := range data {
		apprxPos := int64(float64(data[i]) / j.slope)
		err := int64(i) - apprxPos
		j.maxLErr = min(j.maxLErr, err)
		j.maxRErr = max(j.maxRErr, err)
	}
	j.maxLErr--
	j.maxRErr++
	return j, nil
}

// window returns the error-bounded search interval around the
// approximated position of x.
func (j *JIndex[T]) window(x T) (int, int) {
	apprxPos := int64(float64(x) / j.slope)
	left := max(apprxPos+j.maxLErr, 0)
	right := min(apprxPos+j.maxRErr+1, int64(len(j.data)))
	return int(left), int(right)
}

// Predecessor returns the greatest element <= x.
func (j *JIndex[T]) Predecessor(x T) Result {
	if x < j.min {
		return Result{}
	}
	if x >= j.max {
		return Result{true, len(j.data) - 1}
	}
	left, right := j.window(x)
	win := j.data[left:right]
	off := sort.Search(len(win), func(i int) bool { return win[i] > x })
	return Result{true, left + off - 1}
}

// Successor returns the smallest element >= x.
func (j *JIndex[T]) Successor(x T) Result {
	if x <= j.min {
		return Result{true, 0}
	}
	if x > j.max {
		return Result{}
	}
	left, right := j.window(x)
	win := j.data[left:right]
	off := sort.Search(len(win), func(i int) bool { return win[i] >= x })
	return Result{true, left + off}
}

// Contains reports whether x is present in the array.
func (j *JIndex[T]) Contains(x T) bool {
	r := j.Successor(x)
	return r.Exists && j.data[r.Pos] == x
}
