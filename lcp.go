package lce

// BuildLCPArray runs Kasai's algorithm in O(n) time. Entry k of the
// result holds the LCP of the suffixes at suffix-array ranks k and k+1.
func BuildLCPArray(suffixArray []int, text []byte) []int {
	rank := make([]int, len(suffixArray))
	for i := range suffixArray {
		rank[suffixArray[i]] = i
	}

	lcp := make([]int, len(suffixArray)-1)
	l := 0
	for i := range suffixArray {
		if rank[i]+1 == len(suffixArray) {
			l = 0
			continue
		}
		j := suffixArray[rank[i]+1]
		for i+l < len(text) && j+l < len(text) && text[i+l] == text[j+l] {
			l++
		}
		lcp[rank[i]] = l
		if l > 0 {
			l--
		}
	}

	return lcp
}

// kasaiLCP is the generic, sliced form used by the classic index: entry
// k holds the LCP of the suffixes at ranks k-1 and k (entry 0 is 0).
// Walking positions in text order lets the running LCP drop by at most
// one per step; each slice restarts the running LCP at zero, which only
// costs extra comparisons at the boundary, never correctness.
func kasaiLCP[C Char, I IndexInt](text []C, sa, isa []I, threads int) []I {
	lcp := make([]I, len(sa))
	forEachSlice(threads, len(sa)-1, func(from, to int) {
		current := 0
		for i := from; i < to; i++ {
			saPos := int(isa[i])
			if saPos == 0 {
				current = 0
				continue
			}
			preceding := int(sa[saPos-1])
			current += naiveLCEUneq(text, len(text), i+current, preceding+current)
			lcp[saPos] = I(current)
			if current != 0 {
				current--
			}
		}
	})
	return lcp
}
