package rmq

import (
	"runtime"

	"golang.org/x/exp/constraints"
)

// DefaultBlockSize is the sampling block width of Sampled.
const DefaultBlockSize = 64

// Sampled is the O(n)-space RMQ: the array is cut into fixed-size blocks,
// the argmin of every block is sampled, and a sparse table is built over
// the per-block minima only. Queries scan at most three blocks linearly.
type Sampled[K constraints.Ordered] struct {
	data           []K
	blockSize      int
	sampledIndexes []int32
	sampledMinima  []K
	sampledRMQ     *Sparse[K]
}

// NewSampled builds a sampled RMQ with DefaultBlockSize.
func NewSampled[K constraints.Ordered](data []K) (*Sampled[K], error) {
	return NewSampledBlock(data, DefaultBlockSize, runtime.GOMAXPROCS(0))
}

// NewSampledBlock is NewSampled with explicit block size and fan-out.
func NewSampledBlock[K constraints.Ordered](data []K, blockSize, threads int) (*Sampled[K], error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	s := &Sampled[K]{data: data, blockSize: blockSize}
	numBlocks := (len(data)-1)/blockSize + 1
	s.sampledIndexes = make([]int32, numBlocks)
	s.sampledMinima = make([]K, numBlocks)

	parallelFor(threads, numBlocks, func(from, to int) {
		for block := from; block < to; block++ {
			minIndex := block * blockSize
			end := min((block+1)*blockSize, len(data))
			for i := minIndex + 1; i < end; i++ {
				if data[i] < data[minIndex] {
					minIndex = i
				}
			}
			s.sampledIndexes[block] = int32(minIndex)
			s.sampledMinima[block] = data[minIndex]
		}
	})

	var err error
	s.sampledRMQ, err = NewSparseThreads(s.sampledMinima, threads)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// RMQ returns the index of the smallest element in
// data[min(i,j)..max(i,j)].
func (s *Sampled[K]) RMQ(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return s.RMQLR(i, j)
}

// RMQLR is RMQ with an l <= r precondition.
func (s *Sampled[K]) RMQLR(left, right int) int {
	if right-left <= 3*s.blockSize {
		m := left
		for i := left + 1; i <= right; i++ {
			if s.data[i] < s.data[m] {
				m = i
			}
		}
		return m
	}

	// Head block.
	checkLeftUntil := (1 + left/s.blockSize) * s.blockSize
	minBeg := left
	for i := left + 1; i < checkLeftUntil; i++ {
		if s.data[i] < s.data[minBeg] {
			minBeg = i
		}
	}

	// Tail block.
	checkRightFrom := (right / s.blockSize) * s.blockSize
	minEnd := checkRightFrom
	for i := checkRightFrom + 1; i <= right; i++ {
		if s.data[i] < s.data[minEnd] {
			minEnd = i
		}
	}

	// Fully contained middle blocks.
	lBlock := left/s.blockSize + 1
	rBlock := right/s.blockSize - 1
	minMid := int(s.sampledIndexes[s.sampledRMQ.RMQLR(lBlock, rBlock)])

	m := minBeg
	if s.data[minMid] < s.data[m] {
		m = minMid
	}
	if s.data[minEnd] < s.data[m] {
		m = minEnd
	}
	return m
}

// RMQShifted returns the index of the smallest element in
// data[min(i,j)+1..max(i,j)]. Requires i != j.
func (s *Sampled[K]) RMQShifted(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return s.RMQLR(i+1, j)
}
