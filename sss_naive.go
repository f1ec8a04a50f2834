package lce

import (
	"fmt"

	"lukechampine.com/uint128"

	"github.com/viniciusth/lce/pred"
	"github.com/viniciusth/lce/rollinghash"
)

// SSSNaive combines a string synchronizing set with plain scans: a
// query first compares up to 3tau characters directly; only when that
// saturates does it jump to the next synchronizing positions and walk
// the per-position fingerprints until they disagree, finishing with one
// more direct scan from the last agreeing pair.
type SSSNaive[I IndexInt] struct {
	text []byte
	tau  int
	sync *rollinghash.SSS[I]
	pred *pred.Index[I]
}

// predIndexLoBits is the low-bit width of the bucketed successor index
// over the synchronizing positions.
const predIndexLoBits = 7

// NewSSSNaive builds the index over text. The text is retained, not
// copied, and must stay unchanged for the lifetime of the index.
func NewSSSNaive[I IndexInt](text []byte, opts *Options) (*SSSNaive[I], error) {
	opt := opts.withDefaults()
	threads := resolveThreads(opt.Threads)

	sync, err := rollinghash.NewSSS[I](text, opt.Tau, &rollinghash.Options{
		ComputeFps: true,
		Base:       opt.Base,
		Threads:    threads,
		Logger:     opt.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("lce: %w", err)
	}

	predIdx, err := pred.NewIndexThreads(sync.Positions(), predIndexLoBits, threads)
	if err != nil {
		return nil, fmt.Errorf("lce: %w", err)
	}

	return &SSSNaive[I]{
		text: text,
		tau:  opt.Tau,
		sync: sync,
		pred: predIdx,
	}, nil
}

// LCE returns the number of common letters in text[i..] and text[j..].
func (ds *SSSNaive[I]) LCE(i, j int) int {
	if i == j {
		return len(ds.text) - i
	}
	return ds.LCEUneq(i, j)
}

// LCEUneq is LCE with an i != j precondition.
func (ds *SSSNaive[I]) LCEUneq(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return ds.LCELR(i, j)
}

// LCELR is LCE with an l < r precondition.
func (ds *SSSNaive[I]) LCELR(l, r int) int {
	n := len(ds.text)

	// Head scan: up to 3tau characters, or to the end of the text.
	lceMax := n - r
	lceLocalMax := min(3*ds.tau, lceMax)
	lceLocal := naiveLCELR(ds.text, r+lceLocalMax, l, r)
	if lceLocal < lceLocalMax || lceLocal == lceMax {
		return lceLocal
	}

	// Block step over the synchronizing set.
	sss := ds.sync.Positions()
	fps := ds.sync.Fps()

	lNext := ds.pred.Successor(I(l)).Pos
	rNext := ds.pred.Successor(I(r)).Pos

	// Synchronizing positions at different distances mean both suffixes
	// sit at the end of runs; the mismatch is pinned to the shorter one.
	lDiff := int(sss[lNext]) - l
	rDiff := int(sss[rNext]) - r
	if lDiff != rDiff {
		return min(lDiff, rDiff) + 2*ds.tau - 1
	}

	blockLCE := fpSliceLCE(fps, lNext, rNext)
	if blockLCE == 0 {
		return lDiff + naiveLCELR(ds.text, n, int(sss[lNext]), int(sss[rNext]))
	}

	lMis := int(sss[lNext+blockLCE-1])
	rMis := int(sss[rNext+blockLCE-1])

	// Tail scan from the last agreeing pair.
	rest := naiveLCELR(ds.text, n, lMis, rMis)
	return (lMis - l) + rest
}

// fpSliceLCE is the naive LCE over the fingerprint sequence: the number
// of leading positions from (i, j) whose fingerprints agree.
func fpSliceLCE(fps []uint128.Uint128, i, j int) int {
	if i > j {
		i, j = j, i
	}
	maxLCE := len(fps) - j
	lce := 0
	for lce < maxLCE && fps[i+lce].Equals(fps[j+lce]) {
		lce++
	}
	return lce
}

// LCEMismatch returns the LCE and whether it ends with a mismatch.
func (ds *SSSNaive[I]) LCEMismatch(i, j int) (bool, int) {
	return mismatchFromLR(len(ds.text), i, j, ds.LCELR)
}

// IsLeqSuffix reports whether the suffix at i sorts at or before the
// suffix at j. Requires i != j.
func (ds *SSSNaive[I]) IsLeqSuffix(i, j int) bool {
	lce := ds.LCEUneq(i, j)
	return isLeqFromLCE(ds.text, len(ds.text), i, j, lce)
}

// LCEUpTo returns the LCE capped at upTo and whether a mismatch occurs
// within the cap. The head scan stops at the cap, so short caps never
// touch the synchronizing set.
func (ds *SSSNaive[I]) LCEUpTo(i, j, upTo int) (bool, int) {
	n := len(ds.text)
	if i == j {
		return false, min(upTo, n-i)
	}
	l, r := min(i, j), max(i, j)

	lceMax := min(n-r, upTo)
	lceLocalMax := min(3*ds.tau, lceMax)
	lceLocal := naiveLCELR(ds.text, r+lceLocalMax, l, r)
	if lceLocal < lceLocalMax {
		return true, lceLocal
	}
	if lceLocal == lceMax {
		return false, lceLocal
	}

	lce := min(ds.LCELR(l, r), lceMax)
	return lce < lceMax, lce
}

// Size returns the length of the indexed text.
func (ds *SSSNaive[I]) Size() int { return len(ds.text) }

// SyncSet exposes the underlying string synchronizing set.
func (ds *SSSNaive[I]) SyncSet() *rollinghash.SSS[I] { return ds.sync }
