package rollinghash

import "math/bits"

// ringBuffer is a fixed-capacity buffer addressed by absolute index.
// Capacity is rounded up to the next power of two so access is a single
// mask. The caller must never read an index more than the capacity
// behind the largest index written.
type ringBuffer[T any] struct {
	mask int
	size int
	data []T
}

func newRingBuffer[T any](capacity int) *ringBuffer[T] {
	size := 1 << bits.Len(uint(capacity-1))
	return &ringBuffer[T]{
		mask: size - 1,
		data: make([]T, size),
	}
}

func (r *ringBuffer[T]) pushBack(v T) {
	r.data[r.size&r.mask] = v
	r.size++
}

func (r *ringBuffer[T]) len() int { return r.size }

// seek repositions the logical size so the next pushBack lands at
// absolute index s. Used when a producer starts mid-stream.
func (r *ringBuffer[T]) seek(s int) { r.size = s }

func (r *ringBuffer[T]) at(index int) T {
	return r.data[index&r.mask]
}
