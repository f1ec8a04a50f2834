package rollinghash

import (
	"errors"
	"math"
	"math/bits"
	"math/rand/v2"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"lukechampine.com/uint128"
)

var (
	ErrTextTooShort = errors.New("rollinghash: text shorter than 5*tau")
	ErrInvalidTau   = errors.New("rollinghash: tau must be a power of two >= 2")
)

// PosInt constrains the integer width used to store text offsets.
type PosInt interface {
	~uint32 | ~uint64
}

// Options configures SSS construction. The zero value asks for a random
// hasher base, no fingerprints and one worker per CPU.
type Options struct {
	// ComputeFps retains the tau-window fingerprint of every selected
	// position. Needed by indices that compare synchronizing blocks by
	// fingerprint; release with FreeFps once copied.
	ComputeFps bool
	// Base fixes the Karp-Rabin base, making construction reproducible.
	// 0 draws a random base.
	Base uint64
	// Threads is the construction fan-out; 0 means GOMAXPROCS.
	Threads int
	// Logger receives construction statistics; nil logs nothing.
	Logger *zerolog.Logger
}

// SSS is a string synchronizing set of granularity tau: the positions
// i in [0, n-2tau+1] whose window [i, i+tau] attains its minimal
// tau-window fingerprint at i or at i+tau. The sampled positions are
// consistent (equal 2tau-infixes select the same shifted positions) and
// dense (every tau-window outside a short-period run holds one), which
// is what makes them usable as anchors for LCE queries.
//
// Construction is a fork-join pass over contiguous slices. If the first
// pass oversamples (long periodic regions inflate the set), a second
// run-aware pass detects maximal short-period runs, excludes their
// interiors and records run-info entries for runs long enough to matter
// to 3tau-infix comparisons.
type SSS[I PosInt] struct {
	tau           int
	sss           []I
	fps           []uint128.Uint128
	fpsCalculated bool
	runInfo       *runInfoMap
	runsDetected  bool
}

type qrun struct {
	start, end int // inclusive interval of positions excluded from the set
}

// NewSSS builds the synchronizing set of text with granularity tau.
func NewSSS[I PosInt](text []byte, tau int, opts *Options) (*SSS[I], error) {
	if opts == nil {
		opts = &Options{}
	}
	if tau < 2 || bits.OnesCount(uint(tau)) != 1 {
		return nil, ErrInvalidTau
	}
	n := len(text)
	if n < 5*tau {
		return nil, ErrTextTooShort
	}

	base := opts.Base
	if base == 0 {
		base = 257 + rand.Uint64N(MaxBase-257+1)
	}
	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	s := &SSS[I]{tau: tau, runInfo: newRunInfoMap()}
	sssEnd := n - 2*tau + 1
	if threads > sssEnd {
		threads = 1
	}

	parts := make([][]I, threads)
	fpParts := make([][]uint128.Uint128, threads)
	forEachSlice(threads, sssEnd, func(t, from, to int) {
		parts[t], fpParts[t] = s.fill(text, base, from, to, opts.ComputeFps)
	})

	sssSize := 0
	for _, part := range parts {
		sssSize += len(part)
	}
	s.runsDetected = sssSize > n*4/tau

	// Long runs inflate the set beyond the density bound; redo the scan
	// with run detection.
	if s.runsDetected {
		forEachSlice(threads, sssEnd, func(t, from, to int) {
			parts[t], fpParts[t] = s.fillRuns(text, base, from, to, opts.ComputeFps)
		})
	}

	// Merge the slice-local parts in slice order via a prefix-summed
	// write-offset array.
	writePos := make([]int, threads+1)
	for t, part := range parts {
		writePos[t+1] = writePos[t] + len(part)
	}
	sssSize = writePos[threads]
	if s.runsDetected {
		sssSize++ // sentinel
	}
	s.sss = make([]I, sssSize)
	if opts.ComputeFps {
		s.fps = make([]uint128.Uint128, sssSize)
		s.fpsCalculated = true
	}
	p := pool.New().WithMaxGoroutines(threads)
	for t := 0; t < threads; t++ {
		p.Go(func() {
			copy(s.sss[writePos[t]:], parts[t])
			if opts.ComputeFps {
				copy(s.fps[writePos[t]:], fpParts[t])
			}
		})
	}
	p.Wait()
	if s.runsDetected {
		// Sentinel needed for text with runs.
		s.sss[sssSize-1] = I(sssEnd)
	}

	if opts.Logger != nil {
		opts.Logger.Debug().
			Int("tau", tau).
			Int("sss_size", s.Size()).
			Int("num_runs", s.NumRuns()).
			Bool("has_runs", s.runsDetected).
			Msg("string synchronizing set built")
	}
	return s, nil
}

// fill scans [from, to) without run awareness, streaming tau-window
// fingerprints through a ring buffer and tracking the position of the
// minimal fingerprint in the rolling window [i, i+tau].
func (s *SSS[I]) fill(text []byte, base uint64, from, to int, keepFps bool) ([]I, []uint128.Uint128) {
	tau := s.tau
	var out []I
	var outFps []uint128.Uint128

	rk := NewHasher(text, from, tau, base)
	fps := newRingBuffer[uint128.Uint128](4 * tau)
	fps.seek(from)
	fps.pushBack(rk.Fp())
	firstMin := 0

	for i := from; i < to; i++ {
		for j := fps.len(); j <= i+tau; j++ {
			fps.pushBack(rk.Roll(text[j-1], text[j+tau-1]))
		}

		if firstMin == 0 || firstMin < i {
			firstMin = i
			for j := i; j <= i+tau; j++ {
				if fps.at(j).Cmp(fps.at(firstMin)) < 0 {
					firstMin = j
				}
			}
		} else if fps.at(i+tau).Cmp(fps.at(firstMin)) < 0 {
			firstMin = i + tau
		}

		if fps.at(firstMin).Equals(fps.at(i)) || fps.at(firstMin).Equals(fps.at(i+tau)) {
			out = append(out, I(i))
			if keepFps {
				outFps = append(outFps, fps.at(i))
			}
		}
	}
	return out, outFps
}

// fillRuns is fill with the run set Q: positions covered by a maximal
// short-period run of length >= tau are excluded from the minimum scan
// and from the set.
func (s *SSS[I]) fillRuns(text []byte, base uint64, from, to int, keepFps bool) ([]I, []uint128.Uint128) {
	tau := s.tau
	qset := s.calculateQ(text, base, from, to)
	qset = append(qset, qrun{math.MaxInt, math.MaxInt})
	qi := 0

	var out []I
	var outFps []uint128.Uint128

	rk := NewHasher(text, from, tau, base)
	fps := newRingBuffer[uint128.Uint128](4 * tau)
	fps.seek(from)
	fps.pushBack(rk.Fp())

	const minUnknown = -1
	firstMin := minUnknown

	for i := from; i < to; i++ {
		for j := fps.len(); j <= i+tau; j++ {
			fps.pushBack(rk.Roll(text[j-1], text[j+tau-1]))
		}
		for qset[qi].end < i {
			qi++
		}

		if firstMin == minUnknown || firstMin < i {
			// The minimum of the current range is unknown; rescan,
			// skipping positions covered by Q.
			qt := qi
			for j := i; j <= i+tau; j++ {
				if qset[qt].end < j {
					qt++
				}
				if qset[qt].start <= j {
					j = qset[qt].end
					continue
				}
				if firstMin == minUnknown || firstMin < i {
					firstMin = j
				}
				if fps.at(j).Cmp(fps.at(firstMin)) < 0 {
					firstMin = j
				}
			}
			// No candidate outside Q; jump to the next position that
			// may re-enter the set.
			if firstMin == minUnknown || firstMin < i {
				i = qset[qt].end - tau
				continue
			}
		} else if firstMin <= i+tau {
			// Known minimum; only the newly entering fingerprint can
			// displace it, and only if it is outside Q.
			qt := qi
			for qset[qt].end < i+tau {
				qt++
			}
			if qset[qt].start > i+tau && fps.at(i+tau).Cmp(fps.at(firstMin)) < 0 {
				firstMin = i + tau
			}
		}

		if fps.at(firstMin).Equals(fps.at(i)) || fps.at(firstMin).Equals(fps.at(i+tau)) {
			out = append(out, I(i))
			if keepFps {
				outFps = append(outFps, fps.at(i))
			}
		}
	}
	return out, outFps
}

// calculateQ detects maximal runs with period <= tau/4 inside the slice
// by looking for two equal minimal fingerprints of tau/4-windows within
// tau/4 positions, then extending the repetition naively over the text.
// Runs of length >= 3tau-1 additionally record run-info at the position
// preceding the run.
func (s *SSS[I]) calculateQ(text []byte, base uint64, from, to int) []qrun {
	tau := s.tau
	size := len(text)
	smallTau := max(1, tau/4)
	var qset []qrun

	rk := NewHasher(text, from, smallTau, base)
	fps := newRingBuffer[uint128.Uint128](4 * tau)
	fps.seek(from)
	fps.pushBack(rk.Fp())

	for i := from; i < to+tau; i++ {
		for j := fps.len(); j < i+tau; j++ {
			if j+smallTau-1 >= size {
				break
			}
			fps.pushBack(rk.Roll(text[j-1], text[j+smallTau-1]))
		}
		avail := fps.len()
		if i >= avail {
			break
		}

		// First minimum of the tau/4-window fingerprints at i.
		firstMin := i
		for j := i + 1; j < min(i+smallTau, avail); j++ {
			if fps.at(j).Cmp(fps.at(firstMin)) < 0 {
				firstMin = j
			}
		}
		// Next minimum after it.
		nextMin := firstMin + 1
		if nextMin >= avail {
			break
		}
		for j := nextMin + 1; j < min(firstMin+smallTau, avail); j++ {
			if fps.at(j).Cmp(fps.at(nextMin)) < 0 {
				nextMin = j
			}
		}

		// Two equal minimal fingerprints this close prove a repetition.
		if !fps.at(nextMin).Equals(fps.at(firstMin)) {
			i = nextMin - 1
			continue
		}

		period := nextMin - firstMin
		runStart := firstMin
		for runStart > from && text[runStart-1] == text[runStart+period-1] {
			runStart--
		}
		runEnd := nextMin // inclusive
		rightBound := min(to+2*tau-2, size-1)
		for runEnd < rightBound && text[runEnd+1] == text[runEnd-period+1] {
			runEnd++
		}

		if runEnd-runStart+1 < tau {
			i = nextMin - 1
			continue
		}
		qset = append(qset, qrun{runStart, runEnd - tau + 1})
		i = runEnd - smallTau

		if runEnd-runStart+1 < 3*tau-1 {
			continue
		}
		if runStart == 0 {
			continue // run starts at 0, no run information needed
		}
		if text[runStart-1] == text[runStart+period-1] {
			continue // run extends into the previous slice, not ours
		}
		for runEnd < size-1 && text[runEnd+1] == text[runEnd-period+1] {
			runEnd++
		}

		sssPos1 := runStart - 1
		sssPos2 := runEnd - 2*tau + 2
		runInfo := int64(size) - int64(sssPos2) + int64(sssPos1)
		// The sign encodes how the run is left by the text: whether the
		// character after the run continues above or below the period.
		// A run reaching the end of the text counts as below.
		if runEnd < size-1 && text[runEnd+1] > text[runEnd-period+1] {
			s.runInfo.store(sssPos1, runInfo)
		} else {
			s.runInfo.store(sssPos1, -runInfo)
		}
	}
	return qset
}

// Positions returns the sorted offsets of the set. The slice is shared,
// not copied.
func (s *SSS[I]) Positions() []I { return s.sss }

// Size returns the number of sampled positions.
func (s *SSS[I]) Size() int { return len(s.sss) }

// Tau returns the granularity parameter.
func (s *SSS[I]) Tau() int { return s.tau }

// At returns the i-th sampled text offset.
func (s *SSS[I]) At(i int) int { return int(s.sss[i]) }

// Fps returns the tau-window fingerprint of every sampled position, or
// nil if construction did not compute them.
func (s *SSS[I]) Fps() []uint128.Uint128 { return s.fps }

// FpsCalculated reports whether fingerprints were kept.
func (s *SSS[I]) FpsCalculated() bool { return s.fpsCalculated }

// FreeFps releases the fingerprint array once dependent indices have
// copied what they need.
func (s *SSS[I]) FreeFps() {
	s.fps = nil
	s.fpsCalculated = false
}

// RunInfo returns the run-info entry at a text position, or 0 if the
// position does not precede a long run.
func (s *SSS[I]) RunInfo(pos int) int64 { return s.runInfo.load(pos) }

// NumRuns returns the number of run-info entries.
func (s *SSS[I]) NumRuns() int { return s.runInfo.size() }

// HasRuns reports whether the run-aware pass was needed.
func (s *SSS[I]) HasRuns() bool { return s.runsDetected }

// forEachSlice partitions [0, n) into per-worker contiguous slices and
// runs body(t, from, to) for each, returning after the barrier.
func forEachSlice(threads, n int, body func(t, from, to int)) {
	if threads <= 1 {
		body(0, 0, n)
		return
	}
	p := pool.New().WithMaxGoroutines(threads)
	sliceSize := n / threads
	for t := 0; t < threads; t++ {
		from := t * sliceSize
		to := from + sliceSize
		if t == threads-1 {
			to = n
		}
		p.Go(func() { body(t, from, to) })
	}
	p.Wait()
}
