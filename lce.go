// Package lce answers longest-common-extension queries on a static
// text: given two positions i and j, the length of the longest prefix
// shared by the suffixes starting there. Several index families trade
// construction cost against query cost:
//
//   - NaiveWordwise: no construction, word-accelerated linear scans.
//   - Classic: suffix array + LCP array + range-minimum index, O(1)
//     queries.
//   - FP: rewrites the text in place into overlapping Karp-Rabin
//     fingerprints and answers in O(log n) without extra space.
//   - SSSNaive / SSSNoSS: sample the text with a string synchronizing
//     set and combine short scans with queries over the sample.
//
// All variants agree on the derived operations: suffix comparison,
// bounded LCE and the mismatch indicator. Construction may run in
// parallel; queries are single-threaded and allocation-free.
package lce

import (
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/exp/constraints"

	"github.com/viniciusth/lce/rollinghash"
)

var (
	// ErrTextTooShort is returned when a synchronizing-set variant is
	// asked to index a text shorter than 5*tau.
	ErrTextTooShort = rollinghash.ErrTextTooShort
	// ErrUnsupportedAlphabet is returned when an alphabet cannot be fed
	// to the suffix sorting backend.
	ErrUnsupportedAlphabet = errors.New("lce: unsupported alphabet for suffix sorting")
	// ErrInvalidOption is returned for out-of-range configuration, such
	// as a naive-scan threshold that is not a power of two or an empty
	// text. An invalid tau is reported as rollinghash.ErrInvalidTau.
	ErrInvalidOption = errors.New("lce: invalid option")
)

// Char constrains the element types an index can be built over.
// FP and the synchronizing-set variants additionally require bytes.
type Char interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// IndexInt constrains the integer width used for positions inside an
// index; pick the smallest width that fits the text length.
type IndexInt interface {
	~uint32 | ~uint64
}

// Options configures index construction. The zero value (or nil) means:
// tau 512, naive-scan threshold 32, random hasher base, one worker per
// CPU, prefer-short head scans, no logging.
type Options struct {
	// Tau is the synchronizing-set granularity; a power of two >= 2.
	Tau int
	// NaiveScanThreshold bounds the initial byte scan of FP queries; a
	// power of two.
	NaiveScanThreshold int
	// Base fixes the Karp-Rabin base for reproducible construction;
	// 0 draws a random base.
	Base uint64
	// Threads is the construction fan-out; 0 means GOMAXPROCS.
	Threads int
	// PreferLong selects the head-scan strategy of SSSNoSS that avoids
	// scanning past the next synchronizing position.
	PreferLong bool
	// Logger receives construction statistics; nil logs nothing.
	Logger *zerolog.Logger
}

const (
	defaultTau                = 512
	defaultNaiveScanThreshold = 32
)

func (o *Options) withDefaults() Options {
	var opt Options
	if o != nil {
		opt = *o
	}
	if opt.Tau == 0 {
		opt.Tau = defaultTau
	}
	if opt.NaiveScanThreshold == 0 {
		opt.NaiveScanThreshold = defaultNaiveScanThreshold
	}
	return opt
}

// Index is the query surface shared by every variant over byte texts.
type Index interface {
	// LCE returns the number of common letters in text[i..] and
	// text[j..]; i == j yields n-i.
	LCE(i, j int) int
	// LCEUneq is LCE with an i != j precondition.
	LCEUneq(i, j int) int
	// LCELR is LCE with an l < r precondition.
	LCELR(l, r int) int
	// LCEMismatch returns the LCE and whether it ends with a mismatch
	// rather than the end of the text.
	LCEMismatch(i, j int) (bool, int)
	// IsLeqSuffix reports whether the suffix at i sorts at or before
	// the suffix at j; the end of the text counts as smaller. Requires
	// i != j.
	IsLeqSuffix(i, j int) bool
	// LCEUpTo returns the LCE capped at upTo and whether a mismatch
	// occurs within the cap.
	LCEUpTo(i, j, upTo int) (bool, int)
	// Size returns the length of the indexed text.
	Size() int
}

// mismatchFromLR derives the mismatch indicator from an LCELR answer.
func mismatchFromLR(n, i, j int, lceLR func(l, r int) int) (bool, int) {
	if i == j {
		return false, n - i
	}
	l, r := min(i, j), max(i, j)
	lce := lceLR(l, r)
	return r+lce != n, lce
}

// isLeqFromLCE applies the shared mismatch rule: the suffix at i is
// smaller iff it is exhausted first, or the first differing character
// is smaller while j's suffix is not yet exhausted.
func isLeqFromLCE[C constraints.Unsigned](text []C, n, i, j, lce int) bool {
	return i+lce == n || (j+lce != n && text[i+lce] < text[j+lce])
}
