// Package rmq provides range-minimum-query indices over static arrays.
// All queries return the index of the smallest element, with ties broken
// in favor of the smaller index, so results are deterministic regardless
// of how the index was built.
package rmq

import "errors"

var ErrEmptyInput = errors.New("rmq: input array is empty")

// Index answers range-minimum queries over the array it was built from.
type Index interface {
	// RMQ returns the index of the smallest element in data[min(i,j)..max(i,j)].
	RMQ(i, j int) int
	// RMQShifted returns the index of the smallest element in
	// data[min(i,j)+1..max(i,j)]. Useful for LCP arrays, where entry k
	// holds the LCP of the suffixes at ranks k-1 and k.
	RMQShifted(i, j int) int
}
