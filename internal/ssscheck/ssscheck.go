// Package ssscheck verifies the invariants of a string synchronizing
// set against an independently built suffix array: sortedness, the
// position range, consistency of the sampling, fingerprint agreement
// and monotone run-info. It is test support for the rollinghash and lce
// packages.
package ssscheck

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring"

	"github.com/viniciusth/lce"
	"github.com/viniciusth/lce/pred"
	"github.com/viniciusth/lce/rollinghash"
)

// Check validates sss against text. It returns the first violated
// invariant as an error, or nil if all hold.
func Check[I rollinghash.PosInt](text []byte, sss *rollinghash.SSS[I]) error {
	positions := sss.Positions()
	tau := sss.Tau()
	n := len(text)

	if len(positions) == 0 {
		return fmt.Errorf("ssscheck: empty synchronizing set")
	}
	for i := 1; i < len(positions); i++ {
		if positions[i-1] >= positions[i] {
			return fmt.Errorf("ssscheck: set not strictly increasing at %d", i)
		}
	}

	lastPossible := n - 2*tau
	last := int(positions[len(positions)-1])
	if !sss.HasRuns() && last > lastPossible {
		return fmt.Errorf("ssscheck: last position %d beyond %d", last, lastPossible)
	}
	if sss.HasRuns() && last != lastPossible+1 {
		return fmt.Errorf("ssscheck: repetitive text misses sentinel %d, got %d", lastPossible+1, last)
	}

	// Consistency needs the true suffix order; build SA and LCP with
	// the external backend.
	sa, err := lce.BuildSuffixArray(text)
	if err != nil {
		return err
	}
	lcp := lce.BuildLCPArray(sa, text)

	member := roaring.New()
	for _, p := range positions {
		member.Add(uint32(p))
	}
	predIdx, err := pred.NewIndex(positions, 7)
	if err != nil {
		return err
	}
	fps := sss.Fps()

	// Positions sharing a 2tau-infix must be sampled identically, and
	// sampled positions sharing a 3tau-infix must carry the same
	// fingerprint in its value bits.
	for k := 1; k < len(sa); k++ {
		if lcp[k-1] < 2*tau {
			continue
		}
		left, right := sa[k-1], sa[k]
		leftIn := member.Contains(uint32(left))
		rightIn := member.Contains(uint32(right))
		if leftIn != rightIn {
			return fmt.Errorf("ssscheck: consistency broken between %d and %d (lcp %d)",
				left, right, lcp[k-1])
		}
		if lcp[k-1] >= 3*tau && leftIn && rightIn && sss.FpsCalculated() {
			li := predIdx.Predecessor(I(left)).Pos
			ri := predIdx.Predecessor(I(right)).Pos
			if int(positions[li]) != left || int(positions[ri]) != right {
				return fmt.Errorf("ssscheck: predecessor lookup disagrees with membership")
			}
			if !fps[li].Lsh(21).Equals(fps[ri].Lsh(21)) {
				return fmt.Errorf("ssscheck: fingerprints differ for equal 3tau-infixes at %d and %d",
					left, right)
			}
		}
	}

	// Gaps longer than tau must carry run information and short gaps
	// must not.
	for i := 0; i+1 < len(positions); i++ {
		gap := int(positions[i+1]) - int(positions[i])
		info := sss.RunInfo(int(positions[i]))
		if gap > tau && info == 0 {
			return fmt.Errorf("ssscheck: position %d precedes a gap of %d but has no run info",
				positions[i], gap)
		}
		if gap <= tau && info != 0 {
			return fmt.Errorf("ssscheck: position %d has run info %d without a long gap",
				positions[i], info)
		}
	}

	// Run-info must be non-decreasing along the suffix order for
	// suffixes whose LCP reaches 3tau-1.
	lastRunInfo := int64(math.MinInt64)
	if sa[0] != 0 && sss.RunInfo(sa[0]-1) != 0 {
		lastRunInfo = sss.RunInfo(sa[0] - 1)
	}
	for k := 1; k < len(sa); k++ {
		if lcp[k-1] < 3*tau-1 {
			lastRunInfo = math.MinInt64
			continue
		}
		if sa[k] == 0 {
			continue
		}
		info := sss.RunInfo(sa[k] - 1)
		if info == 0 {
			continue
		}
		if info < lastRunInfo {
			return fmt.Errorf("ssscheck: run info not monotone at suffix rank %d (%d < %d)",
				k, info, lastRunInfo)
		}
		lastRunInfo = info
	}

	return nil
}
