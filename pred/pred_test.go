package pred

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sortedRandom(n int, seed int64) []uint64 {
	r := rand.New(rand.NewSource(seed))
	seen := make(map[uint64]bool, n)
	data := make([]uint64, 0, n)
	for len(data) < n {
		v := uint64(r.Intn(n * 16))
		if !seen[v] {
			seen[v] = true
			data = append(data, v)
		}
	}
	sort.Slice(data, func(i, j int) bool { return data[i] < data[j] })
	return data
}

// naivePred is the scan-based oracle.
func naivePred(data []uint64, x uint64, strict bool) Result {
	res := Result{}
	for i, v := range data {
		if v < x || (!strict && v == x) {
			res = Result{true, i}
		}
	}
	return res
}

func naiveSucc(data []uint64, x uint64, strict bool) Result {
	for i, v := range data {
		if v > x || (!strict && v == x) {
			return Result{true, i}
		}
	}
	return Result{}
}

func TestEmpty(t *testing.T) {
	_, err := NewBinSearch([]uint64{})
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = NewIndex([]uint64{}, 7)
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = NewJIndex([]uint64{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestBinSearchStrictForms(t *testing.T) {
	data := []uint64{2, 4, 4, 8, 16}
	// Strict forms over an array with duplicates.
	bs, err := NewBinSearch(data)
	require.NoError(t, err)

	assert.Equal(t, Result{true, 2}, bs.PredecessorStrict(8))
	assert.Equal(t, Result{true, 3}, bs.Predecessor(8))
	assert.Equal(t, Result{true, 3}, bs.SuccessorStrict(4))
	assert.Equal(t, Result{true, 1}, bs.Successor(4))
	assert.Equal(t, Result{}, bs.PredecessorStrict(2))
	assert.Equal(t, Result{}, bs.SuccessorStrict(16))
	assert.True(t, bs.Contains(4))
	assert.False(t, bs.Contains(5))
}

func TestAllAgainstNaive(t *testing.T) {
	data := sortedRandom(2000, 7)
	bs, err := NewBinSearch(data)
	require.NoError(t, err)
	idx, err := NewIndexThreads(data, 7, 4)
	require.NoError(t, err)
	jidx, err := NewJIndex(data)
	require.NoError(t, err)

	for x := uint64(0); x < data[len(data)-1]+5; x++ {
		wantPred := naivePred(data, x, false)
		wantSucc := naiveSucc(data, x, false)

		assert.Equal(t, wantPred, bs.Predecessor(x), "pred(%d)", x)
		assert.Equal(t, wantSucc, bs.Successor(x), "succ(%d)", x)
		assert.Equal(t, naivePred(data, x, true), bs.PredecessorStrict(x))
		assert.Equal(t, naiveSucc(data, x, true), bs.SuccessorStrict(x))

		assert.Equal(t, wantPred, idx.Predecessor(x), "idx pred(%d)", x)
		assert.Equal(t, wantSucc, idx.Successor(x), "idx succ(%d)", x)

		assert.Equal(t, wantPred, jidx.Predecessor(x), "jidx pred(%d)", x)
		assert.Equal(t, wantSucc, jidx.Successor(x), "jidx succ(%d)", x)
	}
}

// Predecessor(x) <= x < Successor(x) whenever both exist, and Contains
// holds exactly when they collide on x.
func TestMonotonicity(t *testing.T) {
	data := sortedRandom(512, 11)
	idx, err := NewIndex(data, 5)
	require.NoError(t, err)

	for x := uint64(0); x < data[len(data)-1]+3; x++ {
		p := idx.Predecessor(x)
		s := idx.Successor(x)
		if p.Exists {
			assert.LessOrEqual(t, data[p.Pos], x)
		}
		if s.Exists {
			assert.GreaterOrEqual(t, data[s.Pos], x)
		}
		wantContains := p.Exists && s.Exists && data[p.Pos] == x && data[s.Pos] == x
		assert.Equal(t, wantContains, idx.Contains(x))
	}
}

func TestIndexLoBitsVariants(t *testing.T) {
	data := sortedRandom(300, 13)
	for _, lo := range []uint{1, 3, 7, 9} {
		idx, err := NewIndexThreads(data, lo, 3)
		require.NoError(t, err)
		for _, x := range []uint64{0, data[0], data[0] + 1, data[150], data[len(data)-1], data[len(data)-1] + 1} {
			assert.Equal(t, naivePred(data, x, false), idx.Predecessor(x), "lo=%d x=%d", lo, x)
			assert.Equal(t, naiveSucc(data, x, false), idx.Successor(x), "lo=%d x=%d", lo, x)
		}
	}
}
