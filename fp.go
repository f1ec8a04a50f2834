package lce

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"lukechampine.com/uint128"

	"github.com/viniciusth/lce/mersenne"
)

// fpPrime is the modulus of the in-place fingerprint index. It exceeds
// 2^63, so a raw 64-bit block is larger than the prime at most once and
// a single carry bit per block records it. Prefix fingerprints live in
// the low 63 bits of each block; the astronomically unlikely fingerprint
// in [2^63, p) cannot be stored and aborts construction.
const fpPrime = 0x800000000000001d

const (
	fpMask63 = 1<<63 - 1
	fpCarry  = 1 << 63
)

// FP answers LCE queries in O(log n) from fingerprints stored in place
// of the text: every aligned 8-byte block is overwritten with the
// Karp-Rabin prefix fingerprint of the text up to and including that
// block, plus a carry bit. The index takes exclusive ownership of the
// buffer; ReverseTransform restores the original bytes.
//
// Bytes are combined in big-endian order so the numeric value of a
// block equals the byte sequence read left to right; the trailing
// n mod 8 bytes stay raw.
type FP struct {
	buf       []byte
	numBlocks int
	tNaive    int
	// pow2[e] = 256^(2^e) mod p, for the doubling distances of the
	// exponential search.
	pow2 [64]uint64
}

// NewFP transforms buf in place and returns the index. The caller must
// not touch buf until the index is dropped or reverse-transformed.
func NewFP(buf []byte, opts *Options) (*FP, error) {
	opt := opts.withDefaults()
	if opt.NaiveScanThreshold < 1 || bits.OnesCount(uint(opt.NaiveScanThreshold)) != 1 {
		return nil, fmt.Errorf("%w: naive scan threshold must be a power of two", ErrInvalidOption)
	}
	threads := resolveThreads(opt.Threads)

	ds := &FP{
		buf:       buf,
		numBlocks: len(buf) / 8,
		tNaive:    opt.NaiveScanThreshold,
	}
	p := uint128.From64(fpPrime)
	pow := uint128.From64(256)
	for e := range ds.pow2 {
		ds.pow2[e] = pow.Lo
		pow = mersenne.MulModGeneric(pow, pow, p)
	}

	ds.transform(threads)

	if opt.Logger != nil {
		opt.Logger.Debug().Int("n", len(buf)).Int("blocks", ds.numBlocks).Msg("fp lce index built")
	}
	return ds, nil
}

// transform overwrites every full block with its prefix fingerprint.
// Slices first fingerprint their block range independently; a serial
// prefix pass combines the per-slice fingerprints into seeds, and a
// second parallel pass writes the rolling fingerprints.
func (ds *FP) transform(threads int) {
	nb := ds.numBlocks
	if nb == 0 {
		return
	}
	if nb < 2*threads {
		threads = 1
	}
	p := uint128.From64(fpPrime)
	sliceSize := nb / threads

	sliceFps := make([]uint64, threads)
	forEachSlice(threads, nb, func(from, to int) {
		var fp uint128.Uint128
		for i := from; i < to; i++ {
			fp = uint128.New(ds.block(i), fp.Lo).Mod(p)
		}
		sliceFps[from/max(sliceSize, 1)] = fp.Lo
	})

	// Prefix-sum the per-slice fingerprints: seed t is the fingerprint
	// of everything before slice t.
	seeds := make([]uint64, threads)
	carry := uint128.From64(0)
	for t := 0; t < threads; t++ {
		seeds[t] = carry.Lo
		from := t * sliceSize
		to := from + sliceSize
		if t == threads-1 {
			to = nb
		}
		shift := mersenne.PowModGeneric(
			uint128.New(0, 1), uint128.From64(uint64(to-from)), p)
		carry = mersenne.MulModGeneric(carry, shift, p)
		carry = carry.Add64(sliceFps[t]).Mod(p)
	}

	forEachSlice(threads, nb, func(from, to int) {
		fp := uint128.From64(seeds[from/max(sliceSize, 1)])
		for i := from; i < to; i++ {
			raw := ds.block(i)
			fp = uint128.New(raw, fp.Lo).Mod(p)
			if fp.Lo >= fpCarry {
				panic("lce: fingerprint collides with the carry bit")
			}
			word := fp.Lo
			if raw >= fpPrime {
				word += fpCarry
			}
			binary.BigEndian.PutUint64(ds.buf[8*i:], word)
		}
	})
}

// ReverseTransform restores the original bytes and releases the buffer
// for the caller. Blocks are rebuilt from high to low so every block
// still sees its predecessor's fingerprint.
func (ds *FP) ReverseTransform() {
	ds.reverse(resolveThreads(0))
}

func (ds *FP) reverse(threads int) {
	nb := ds.numBlocks
	if nb == 0 {
		return
	}
	if nb < 2*threads {
		threads = 1
	}
	sliceSize := nb / threads

	// Capture the slice-boundary fingerprints before any slice starts
	// overwriting blocks.
	prevFps := make([]uint64, threads)
	for t := 1; t < threads; t++ {
		prevFps[t] = ds.word(t*sliceSize-1) & fpMask63
	}
	forEachSlice(threads, nb, func(from, to int) {
		for i := to - 1; i > from; i-- {
			binary.BigEndian.PutUint64(ds.buf[8*i:], ds.rawBlock(i))
		}
		// The first block of the slice needs the captured predecessor.
		word := ds.word(from)
		var prev uint64
		if from > 0 {
			prev = prevFps[from/max(sliceSize, 1)]
		}
		binary.BigEndian.PutUint64(ds.buf[8*from:], rawFromWord(word, prev))
	})
	ds.numBlocks = 0
}

// word returns the stored (fingerprint + carry) word of block i.
func (ds *FP) word(i int) uint64 {
	return binary.BigEndian.Uint64(ds.buf[8*i:])
}

// block returns the big-endian numeric value of the raw 8-byte block at
// position i. Only meaningful before the transform.
func (ds *FP) block(i int) uint64 {
	return binary.BigEndian.Uint64(ds.buf[8*i:])
}

// rawBlock reconstructs the original block i from the transformed
// buffer in O(1): subtract the shifted predecessor fingerprint and add
// the prime back if the carry bit was set.
func (ds *FP) rawBlock(i int) uint64 {
	var prev uint64
	if i > 0 {
		prev = ds.word(i-1) & fpMask63
	}
	return rawFromWord(ds.word(i), prev)
}

func rawFromWord(word, prevFp uint64) uint64 {
	p := uint128.From64(fpPrime)
	x := uint128.New(0, prevFp).Mod(p).Lo
	fp := word & fpMask63
	var raw uint64
	if fp >= x {
		raw = fp - x
	} else {
		raw = fp + (fpPrime - x)
	}
	if word&fpCarry != 0 {
		raw += fpPrime
	}
	return raw
}

// prefixFp returns the fingerprint of text[0..k] (inclusive). Only
// valid for k < 8*numBlocks.
func (ds *FP) prefixFp(k int) uint64 {
	i := k / 8
	pad := uint(((k + 1) % 8) * 8)
	if pad == 0 {
		return ds.word(i) & fpMask63
	}
	var prev uint64
	if i > 0 {
		prev = ds.word(i-1) & fpMask63
	}
	raw := rawFromWord(ds.word(i), prev)
	p := uint128.From64(fpPrime)
	combined := uint128.From64(prev).Lsh(pad).Add64(raw >> (64 - pad))
	return combined.Mod(p).Lo
}

// rangeFp returns the fingerprint of text[a..a+dist). Both ends must
// lie within the transformed blocks.
func (ds *FP) rangeFp(a, dist int) uint64 {
	p := uint128.From64(fpPrime)
	fpEnd := uint128.From64(ds.prefixFp(a + dist - 1))
	if a == 0 {
		return fpEnd.Lo
	}
	shifted := mersenne.MulModGeneric(
		uint128.From64(ds.prefixFp(a-1)), uint128.From64(ds.powDist(dist)), p)
	diff := fpEnd.Add64(fpPrime).Sub(shifted).Mod(p)
	return diff.Lo
}

// powDist returns 256^dist mod p from the precomputed doubling table.
func (ds *FP) powDist(dist int) uint64 {
	p := uint128.From64(fpPrime)
	res := uint128.From64(1)
	for e := 0; dist != 0; e++ {
		if dist&1 == 1 {
			res = mersenne.MulModGeneric(res, uint128.From64(ds.pow2[e]), p)
		}
		dist >>= 1
	}
	return res.Lo
}

// Access returns the text byte at pos, reconstructing its block when it
// lies in the transformed region.
func (ds *FP) Access(pos int) byte {
	i := pos / 8
	if i >= ds.numBlocks {
		return ds.buf[pos]
	}
	raw := ds.rawBlock(i)
	return byte(raw >> (56 - 8*(pos%8)))
}

// LCE returns the number of common letters in text[i..] and text[j..].
func (ds *FP) LCE(i, j int) int {
	if i == j {
		return len(ds.buf) - i
	}
	return ds.LCEUneq(i, j)
}

// LCEUneq is LCE with an i != j precondition.
func (ds *FP) LCEUneq(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return ds.LCELR(i, j)
}

// LCELR runs the hybrid query: a short byte scan, then exponential
// doubling over fingerprint comparisons, then a binary phase that
// re-verifies the matched prefix at every halving, and a final byte
// scan across the last partial block.
func (ds *FP) LCELR(l, r int) int {
	n := len(ds.buf)
	maxLCE := n - r

	// Byte scan across a small window.
	scan := min(ds.tNaive, maxLCE)
	add := ds.compareBytes(l, r, scan)
	if add < scan || add == maxLCE {
		return add
	}

	// Exponential phase: double the compared range until the
	// fingerprints disagree or the transformed region ends.
	maxCmp := ds.numBlocks*8 - r
	dist := ds.tNaive * 2
	for dist <= maxCmp && ds.rangeFp(l, dist) == ds.rangeFp(r, dist) {
		add = dist
		dist *= 2
	}

	// Binary phase over the remaining gap. Each step compares the full
	// prefixes again, so the invariant fp(l, l+add) == fp(r, r+add) is
	// established independently of the exponential phase.
	upper := min(dist, maxCmp)
	for half := (upper - add) / 2; half > 0; half /= 2 {
		if ds.rangeFp(l, add+half) == ds.rangeFp(r, add+half) {
			add += half
		}
	}

	// Byte scan over the last partial block and the raw tail.
	return add + ds.compareBytes(l+add, r+add, maxLCE-add)
}

// compareBytes compares up to maxLen bytes starting at l and r,
// reconstructing each touched block once.
func (ds *FP) compareBytes(l, r, maxLen int) int {
	lce := 0
	var lBlock, rBlock uint64
	lIdx, rIdx := -1, -1
	for lce < maxLen {
		li, ri := l+lce, r+lce
		if bi := li / 8; bi != lIdx {
			lIdx = bi
			if bi >= ds.numBlocks {
				lBlock = 0
			} else {
				lBlock = ds.rawBlock(bi)
			}
		}
		if bi := ri / 8; bi != rIdx {
			rIdx = bi
			if bi >= ds.numBlocks {
				rBlock = 0
			} else {
				rBlock = ds.rawBlock(bi)
			}
		}
		var a, b byte
		if li/8 >= ds.numBlocks {
			a = ds.buf[li]
		} else {
			a = byte(lBlock >> (56 - 8*(li%8)))
		}
		if ri/8 >= ds.numBlocks {
			b = ds.buf[ri]
		} else {
			b = byte(rBlock >> (56 - 8*(ri%8)))
		}
		if a != b {
			return lce
		}
		lce++
	}
	return lce
}

// LCEMismatch returns the LCE and whether it ends with a mismatch.
func (ds *FP) LCEMismatch(i, j int) (bool, int) {
	return mismatchFromLR(len(ds.buf), i, j, ds.LCELR)
}

// IsLeqSuffix reports whether the suffix at i sorts at or before the
// suffix at j. Requires i != j.
func (ds *FP) IsLeqSuffix(i, j int) bool {
	n := len(ds.buf)
	lce := ds.LCEUneq(i, j)
	return i+lce == n || (j+lce != n && ds.Access(i+lce) < ds.Access(j+lce))
}

// LCEUpTo returns the LCE capped at upTo and whether a mismatch occurs
// within the cap.
func (ds *FP) LCEUpTo(i, j, upTo int) (bool, int) {
	if i == j {
		return false, min(upTo, len(ds.buf)-i)
	}
	lceMax := min(len(ds.buf)-max(i, j), upTo)
	lce := min(ds.LCEUneq(i, j), lceMax)
	return lce < lceMax, lce
}

// Size returns the length of the indexed text.
func (ds *FP) Size() int { return len(ds.buf) }
