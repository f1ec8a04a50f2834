package lce

import (
	"golang.org/x/exp/slices"

	"github.com/viniciusth/lce/rollinghash"
)

// reduceThreeTauRanks maps every synchronizing position to a small
// integer rank such that ranks compare exactly like the 3tau-infixes at
// those positions (with run-info breaking ties between positions whose
// infixes agree but whose runs leave the text differently). The rank
// sequence, read in text order, is what the no-ss variant builds its
// classic index over.
func reduceThreeTauRanks[I IndexInt](text []byte, sync *rollinghash.SSS[I], threads int) []I {
	sss := sync.Positions()
	tau := sync.Tau()

	// Order the positions by their 3tau-infix.
	sssSorted := slices.Clone(sss)
	slices.SortFunc(sssSorted, func(lhs, rhs I) int {
		if lhs == rhs {
			return 0
		}
		return cmpThreeTau(text, sync, int(lhs), int(rhs), tau)
	})

	type indexRank struct {
		index I
		rank  I
	}
	rankTuples := make([]indexRank, len(sssSorted))

	if threads > len(sssSorted) {
		threads = 1
	}
	threads = max(threads, 1)
	sliceSize := len(sssSorted) / threads
	bounds := func(t int) (int, int) {
		from := t * sliceSize
		to := from + sliceSize
		if t == threads-1 {
			to = len(sssSorted)
		}
		return from, to
	}

	// Per-slice ranking: equal neighbors share a rank. Slice t seeds
	// its first rank at from+1 so ranks never collide across slices.
	maxRanks := make([]I, threads)
	allRanksEqual := make([]bool, threads)
	rankExtendsPrevBlock := make([]bool, threads)
	forEachSliceT(threads, len(sssSorted), func(t, from, to int) {
		curRank := I(1 + from)
		rankTuples[from] = indexRank{sssSorted[from], curRank}
		for i := from + 1; i < to; i++ {
			if cmpThreeTau(text, sync, int(sssSorted[i-1]), int(sssSorted[i]), tau) != 0 {
				curRank++
			}
			rankTuples[i] = indexRank{sssSorted[i], curRank}
		}
		maxRanks[t] = curRank
	})

	// Boundary flags, then adjust the ranks that extend a run of equal
	// infixes across a slice boundary.
	for t := 0; t < threads; t++ {
		from, _ := bounds(t)
		allRanksEqual[t] = maxRanks[t] == I(from+1)
		rankExtendsPrevBlock[t] = t != 0 &&
			cmpThreeTau(text, sync, int(sssSorted[from-1]), int(sssSorted[from]), tau) == 0
	}
	forEachSliceT(threads, len(sssSorted), func(t, from, to int) {
		if t == 0 || !rankExtendsPrevBlock[t] {
			return
		}
		targetT := t - 1
		for allRanksEqual[targetT] && rankExtendsPrevBlock[targetT] {
			targetT--
		}
		targetRank := maxRanks[targetT]
		rankToDecrease := rankTuples[from].rank
		for i := from; i < to && rankTuples[i].rank == rankToDecrease; i++ {
			rankTuples[i].rank = targetRank
		}
	})

	// Back to text order.
	slices.SortFunc(rankTuples, func(lhs, rhs indexRank) int {
		switch {
		case lhs.index < rhs.index:
			return -1
		case lhs.index > rhs.index:
			return 1
		default:
			return 0
		}
	})

	ranks := make([]I, len(rankTuples))
	for i := range rankTuples {
		ranks[i] = rankTuples[i].rank
	}
	return ranks
}

// cmpThreeTau orders two distinct positions by their 3tau-infix: when
// one infix is cut short by the end of the text, shorter-is-smaller;
// otherwise by the character at the first mismatch — the one just past
// the infix when all 3tau characters agree — and only then by
// run-info. A result of 0 means the positions are indistinguishable
// and must share a rank.
func cmpThreeTau[I IndexInt](text []byte, sync *rollinghash.SSS[I], i, j, tau int) int {
	n := len(text)
	_, lce := naiveLCEUpTo(text, n, i, j, 3*tau)
	if max(i, j)+lce == n {
		// One infix is a proper prefix of the other; the shorter
		// (later) position sorts first.
		if i > j {
			return -1
		}
		return 1
	}
	if text[i+lce] != text[j+lce] {
		if text[i+lce] < text[j+lce] {
			return -1
		}
		return 1
	}
	ri, rj := sync.RunInfo(i), sync.RunInfo(j)
	switch {
	case ri < rj:
		return -1
	case ri > rj:
		return 1
	default:
		return 0
	}
}
