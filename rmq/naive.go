package rmq

import "golang.org/x/exp/constraints"

// Naive answers queries by linear scan. It exists as the oracle the other
// indices are tested against.
type Naive[K constraints.Ordered] struct {
	data []K
}

func NewNaive[K constraints.Ordered](data []K) *Naive[K] {
	return &Naive[K]{data: data}
}

func (s *Naive[K]) RMQ(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return s.RMQLR(i, j)
}

func (s *Naive[K]) RMQLR(left, right int) int {
	m := left
	for i := left + 1; i <= right; i++ {
		if s.data[i] < s.data[m] {
			m = i
		}
	}
	return m
}

func (s *Naive[K]) RMQShifted(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return s.RMQLR(i+1, j)
}
