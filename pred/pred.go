// Package pred provides predecessor and successor indices over static
// sorted integer arrays. Every query answers with a Result naming the
// position of the matching element in the backing array.
package pred

import "errors"

var ErrEmptyInput = errors.New("pred: input array is empty")

// Result is the outcome of a predecessor or successor query. Pos is an
// index into the backing sorted array and is only meaningful when Exists
// is true.
type Result struct {
	Exists bool
	Pos    int
}
