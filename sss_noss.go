package lce

import (
	"fmt"
	"math/bits"

	"github.com/viniciusth/lce/pred"
	"github.com/viniciusth/lce/rollinghash"
)

// SSSNoSS is the synchronizing-set variant that avoids keeping the raw
// per-position fingerprints: the 3tau-infix at every synchronizing
// position is reduced to a small integer rank, and a classic LCE index
// over the rank sequence answers how many whole synchronizing blocks
// two suffixes share. Run-info entries make ranks comparable even for
// positions whose infixes are swallowed by a long periodic run.
//
// Two head-scan strategies exist: the default scans up to 3tau
// characters before consulting the set; PreferLong asks the successor
// index first and caps the scan at the distance to the next
// synchronizing position, which wins when long matches dominate.
type SSSNoSS[I IndexInt] struct {
	text       []byte
	tau        int
	preferLong bool
	sync       *rollinghash.SSS[I]
	pred       *pred.Index[I]
	rankLCE    *Classic[I, I]
}

// NewSSSNoSS builds the index over text. The text is retained, not
// copied, and must stay unchanged for the lifetime of the index.
func NewSSSNoSS[I IndexInt](text []byte, opts *Options) (*SSSNoSS[I], error) {
	opt := opts.withDefaults()
	threads := resolveThreads(opt.Threads)

	sync, err := rollinghash.NewSSS[I](text, opt.Tau, &rollinghash.Options{
		Base:    opt.Base,
		Threads: threads,
		Logger:  opt.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("lce: %w", err)
	}

	loBits := uint(bits.Len(uint(opt.Tau)) - 1)
	predIdx, err := pred.NewIndexThreads(sync.Positions(), loBits, threads)
	if err != nil {
		return nil, fmt.Errorf("lce: %w", err)
	}

	ranks := reduceThreeTauRanks(text, sync, threads)
	rankOpts := Options{Threads: threads, Logger: opt.Logger}
	rankLCE, err := NewClassic[I, I](ranks, &rankOpts)
	if err != nil {
		return nil, err
	}

	return &SSSNoSS[I]{
		text:       text,
		tau:        opt.Tau,
		preferLong: opt.PreferLong,
		sync:       sync,
		pred:       predIdx,
		rankLCE:    rankLCE,
	}, nil
}

// LCE returns the number of common letters in text[i..] and text[j..].
func (ds *SSSNoSS[I]) LCE(i, j int) int {
	if i == j {
		return len(ds.text) - i
	}
	return ds.LCEUneq(i, j)
}

// LCEUneq is LCE with an i != j precondition.
func (ds *SSSNoSS[I]) LCEUneq(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return ds.LCELR(i, j)
}

// LCELR is LCE with an l < r precondition.
func (ds *SSSNoSS[I]) LCELR(l, r int) int {
	n := len(ds.text)
	sss := ds.sync.Positions()
	var lNext, rNext int

	if ds.preferLong {
		// Only scan until the next synchronizing position.
		lceMax := n - r
		lceLocalMax := min(3*ds.tau, lceMax)

		lRes := ds.pred.Successor(I(l))
		rRes := ds.pred.Successor(I(r))
		lNext, rNext = lRes.Pos, rRes.Pos
		if lRes.Exists && rRes.Exists &&
			int(sss[lNext])-l == int(sss[rNext])-r {
			lceLocalMax = min(lceLocalMax, int(sss[lNext])-l)
		}

		lceLocal := naiveLCELR(ds.text, r+lceLocalMax, l, r)
		if lceLocal < lceLocalMax || lceLocal == lceMax {
			return lceLocal
		}
	} else {
		// Scan the full 3tau head before consulting the set.
		lceMax := n - r
		lceLocalMax := min(3*ds.tau, lceMax)
		lceLocal := naiveLCELR(ds.text, r+lceLocalMax, l, r)
		if lceLocal < lceLocalMax || lceLocal == lceMax {
			return lceLocal
		}
		lNext = ds.pred.Successor(I(l)).Pos
		rNext = ds.pred.Successor(I(r)).Pos
	}

	// Synchronizing positions at different distances mean both suffixes
	// sit at the end of runs; the mismatch is pinned to the shorter one.
	if int(sss[lNext])-l != int(sss[rNext])-r {
		return min(int(sss[lNext])-l, int(sss[rNext])-r) + 2*ds.tau - 1
	}

	blockLCE := ds.rankLCE.LCE(lNext, rNext)
	lSync := lNext + blockLCE
	rSync := rNext + blockLCE

	// The positions after the matching blocks are synchronized again;
	// scan up to 3tau characters from them.
	lceMax := n - int(sss[rSync])
	lceLocalMax := min(3*ds.tau, lceMax)
	lceLocal := naiveLCELR(ds.text, int(sss[rSync])+lceLocalMax, int(sss[lSync]), int(sss[rSync]))
	if lceLocal < lceLocalMax || lceLocal == lceMax {
		return (int(sss[lSync]) - l) + lceLocal
	}

	// No mismatch within 3tau: it sits at the next run boundary.
	return min(int(sss[lSync+1])-l, int(sss[rSync+1])-r) + 2*ds.tau - 1
}

// LCEMismatch returns the LCE and whether it ends with a mismatch.
func (ds *SSSNoSS[I]) LCEMismatch(i, j int) (bool, int) {
	return mismatchFromLR(len(ds.text), i, j, ds.LCELR)
}

// IsLeqSuffix reports whether the suffix at i sorts at or before the
// suffix at j. Requires i != j.
func (ds *SSSNoSS[I]) IsLeqSuffix(i, j int) bool {
	lce := ds.LCEUneq(i, j)
	return isLeqFromLCE(ds.text, len(ds.text), i, j, lce)
}

// LCEUpTo returns the LCE capped at upTo and whether a mismatch occurs
// within the cap.
func (ds *SSSNoSS[I]) LCEUpTo(i, j, upTo int) (bool, int) {
	if i == j {
		return false, min(upTo, len(ds.text)-i)
	}
	lceMax := min(len(ds.text)-max(i, j), upTo)
	lce := min(ds.LCEUneq(i, j), lceMax)
	return lce < lceMax, lce
}

// Size returns the length of the indexed text.
func (ds *SSSNoSS[I]) Size() int { return len(ds.text) }

// SyncSet exposes the underlying string synchronizing set.
func (ds *SSSNoSS[I]) SyncSet() *rollinghash.SSS[I] { return ds.sync }
