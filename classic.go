package lce

import (
	"fmt"
	"math"
	"sort"
	"unsafe"

	"github.com/viniciusth/lce/rmq"
)

// Classic is the textbook LCE index: suffix array, inverse array, LCP
// array by Kasai's algorithm, and a sparse-table range-minimum index
// over the LCP array. Queries are constant time.
//
// The suffix array is produced by the vendored SA-IS backend. Byte
// texts are sorted directly; wider alphabets are coordinate-compressed
// first, which covers the small-word alphabets this index is used with
// (in particular the rank sequences of SSSNoSS).
type Classic[C Char, I IndexInt] struct {
	text []C
	sa   []I
	isa  []I
	lcp  []I
	rmq  *rmq.Sparse[I]
}

// NewClassic builds the classic index over text. The text is retained,
// not copied, and must stay unchanged for the lifetime of the index.
func NewClassic[C Char, I IndexInt](text []C, opts *Options) (*Classic[C, I], error) {
	opt := opts.withDefaults()
	threads := resolveThreads(opt.Threads)
	n := len(text)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty text", ErrInvalidOption)
	}
	var zeroI I
	if unsafe.Sizeof(zeroI) == 4 && n > math.MaxInt32 {
		return nil, fmt.Errorf("%w: text of %d elements needs a 64-bit index type", ErrInvalidOption, n)
	}

	ds := &Classic[C, I]{text: text}
	sa, err := buildSuffixArray[C, I](text, threads)
	if err != nil {
		return nil, err
	}
	ds.sa = sa

	ds.isa = make([]I, n)
	forEachSlice(threads, n, func(from, to int) {
		for i := from; i < to; i++ {
			ds.isa[sa[i]] = I(i)
		}
	})

	ds.lcp = kasaiLCP(text, ds.sa, ds.isa, threads)

	ds.rmq, err = rmq.NewSparseThreads(ds.lcp, threads)
	if err != nil {
		return nil, err
	}

	if opt.Logger != nil {
		opt.Logger.Debug().Int("n", n).Msg("classic lce index built")
	}
	return ds, nil
}

// buildSuffixArray feeds the text to the SA-IS backend. Byte texts go
// in directly; anything wider is coordinate-compressed so the bucket
// arrays stay proportional to the number of distinct symbols.
func buildSuffixArray[C Char, I IndexInt](text []C, threads int) ([]I, error) {
	var zeroC C
	n := len(text)
	sa := make([]I, n)

	if unsafe.Sizeof(zeroC) == 1 {
		bytes := unsafe.Slice((*byte)(unsafe.Pointer(&text[0])), n)
		if n <= math.MaxInt32 {
			sa32 := suffixArrayBytes32(bytes)
			for i, v := range sa32 {
				sa[i] = I(v)
			}
		} else {
			sa64 := suffixArrayBytes64(bytes)
			for i, v := range sa64 {
				sa[i] = I(v)
			}
		}
		return sa, nil
	}

	// Coordinate-compress: suffix order only depends on the relative
	// order of symbols.
	alphabet := make([]C, n)
	copy(alphabet, text)
	sort.Slice(alphabet, func(i, j int) bool { return alphabet[i] < alphabet[j] })
	distinct := alphabet[:0]
	for i, v := range alphabet {
		if i == 0 || v != distinct[len(distinct)-1] {
			distinct = append(distinct, v)
		}
	}
	if n <= math.MaxInt32 {
		compressed := make([]int32, n)
		forEachSlice(threads, n, func(from, to int) {
			for i := from; i < to; i++ {
				compressed[i] = int32(sort.Search(len(distinct), func(k int) bool {
					return distinct[k] >= text[i]
				}))
			}
		})
		sa32 := suffixArrayInts32(compressed, len(distinct))
		for i, v := range sa32 {
			sa[i] = I(v)
		}
		return sa, nil
	}
	if unsafe.Sizeof(zeroC) == 8 {
		return nil, fmt.Errorf("%w: 64-bit symbols over texts beyond 2^31 elements", ErrUnsupportedAlphabet)
	}
	compressed := make([]int64, n)
	forEachSlice(threads, n, func(from, to int) {
		for i := from; i < to; i++ {
			compressed[i] = int64(sort.Search(len(distinct), func(k int) bool {
				return distinct[k] >= text[i]
			}))
		}
	})
	sa64 := suffixArrayInts64(compressed, len(distinct))
	for i, v := range sa64 {
		sa[i] = I(v)
	}
	return sa, nil
}

// LCE returns the number of common letters in text[i..] and text[j..].
func (ds *Classic[C, I]) LCE(i, j int) int {
	if i == j {
		return len(ds.text) - i
	}
	return ds.LCEUneq(i, j)
}

// LCEUneq is LCE with an i != j precondition.
func (ds *Classic[C, I]) LCEUneq(i, j int) int {
	return ds.LCELR(i, j)
}

// LCELR returns the LCE of two distinct suffixes. The LCP entry at rank
// k covers ranks k-1 and k, so the minimum must span (a, b]: the
// shifted RMQ form.
func (ds *Classic[C, I]) LCELR(l, r int) int {
	return int(ds.lcp[ds.rmq.RMQShifted(int(ds.isa[l]), int(ds.isa[r]))])
}

// LCEMismatch returns the LCE and whether it ends with a mismatch.
func (ds *Classic[C, I]) LCEMismatch(i, j int) (bool, int) {
	return mismatchFromLR(len(ds.text), i, j, ds.LCELR)
}

// IsLeqSuffix reports whether the suffix at i sorts at or before the
// suffix at j. Requires i != j.
func (ds *Classic[C, I]) IsLeqSuffix(i, j int) bool {
	lce := ds.LCEUneq(i, j)
	return isLeqFromLCE(ds.text, len(ds.text), i, j, lce)
}

// LCEUpTo returns the LCE capped at upTo and whether a mismatch occurs
// within the cap.
func (ds *Classic[C, I]) LCEUpTo(i, j, upTo int) (bool, int) {
	if i == j {
		return false, min(upTo, len(ds.text)-i)
	}
	lceMax := min(len(ds.text)-max(i, j), upTo)
	lce := min(ds.LCEUneq(i, j), lceMax)
	return lce < lceMax, lce
}

// Size returns the length of the indexed text.
func (ds *Classic[C, I]) Size() int { return len(ds.text) }

// SuffixArray exposes the underlying suffix array.
func (ds *Classic[C, I]) SuffixArray() []I { return ds.sa }

// LCPArray exposes the underlying LCP array; entry k is the LCP of the
// suffixes at ranks k-1 and k.
func (ds *Classic[C, I]) LCPArray() []I { return ds.lcp }
