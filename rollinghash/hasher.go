// Package rollinghash implements a Karp-Rabin rolling hasher over the
// Mersenne prime 2^107-1 and the string synchronizing set built on top
// of it.
package rollinghash

import (
	"math/rand/v2"

	"lukechampine.com/uint128"

	"github.com/viniciusth/lce/mersenne"
)

var prime = mersenne.P107

// MaxBase is the largest base keeping bitwidth(prime) + bitwidth(base)
// within 127 bits, so a window roll never overflows 128-bit arithmetic.
const MaxBase = 1<<(127-107) - 1

// Hasher maintains the Karp-Rabin fingerprint of a sliding window of
// fixed length tau. Rolling one position costs a multiplication, one
// table lookup and a reduction: the 256x256 influence table stores, for
// every (outgoing, incoming) character pair, the combined contribution
// (in - out*base^tau) mod p.
//
// The hasher never stores fingerprints of substrings; callers snapshot
// Fp after each roll.
type Hasher struct {
	tau       int
	base      uint128.Uint128
	fp        uint128.Uint128
	influence *[256][256]uint128.Uint128

	text       []byte
	start, end int
}

// NewHasher creates a hasher over text with its window starting at
// start. A base of 0 picks a random base in [257, MaxBase]; any other
// value is used as is, which makes the fingerprints reproducible.
func NewHasher(text []byte, start, tau int, base uint64) *Hasher {
	if base == 0 {
		base = 257 + rand.Uint64N(MaxBase-257+1)
	}
	h := &Hasher{
		tau:   tau,
		base:  uint128.From64(base),
		text:  text,
		start: start,
		end:   start + tau,
	}
	h.fillInfluenceTable()
	for i := 0; i < tau; i++ {
		h.fp = prime.Reduce(h.fp.MulWrap(h.base).AddWrap64(uint64(text[start+i])))
	}
	return h
}

// Roll shifts the window by one position, rolling out the character out
// and rolling in the character in, and returns the new fingerprint.
func (h *Hasher) Roll(out, in byte) uint128.Uint128 {
	h.fp = prime.Reduce(h.fp.MulWrap(h.base).AddWrap(h.influence[out][in]))
	return h.fp
}

// RollWindow advances the hasher's own window endpoints by one position.
func (h *Hasher) RollWindow() uint128.Uint128 {
	fp := h.Roll(h.text[h.start], h.text[h.end])
	h.start++
	h.end++
	return fp
}

// Fp returns the fingerprint of the current window.
func (h *Hasher) Fp() uint128.Uint128 { return h.fp }

// Base returns the base of the hash function.
func (h *Hasher) Base() uint128.Uint128 { return h.base }

// Prime returns the modulus of the hash function.
func (h *Hasher) Prime() uint128.Uint128 { return prime.Val }

// fillInfluenceTable builds the rolling table row by row: column 0 of
// row i holds -i*base^tau, and every following column adds 1 mod p.
func (h *Hasher) fillInfluenceTable() {
	basePowTau := prime.PowMod(h.base, uint128.From64(uint64(h.tau)))
	minusBasePowTau := prime.AdditiveInverse(basePowTau)

	h.influence = new([256][256]uint128.Uint128)
	for j := 1; j < 256; j++ {
		h.influence[0][j] = uint128.From64(uint64(j))
	}
	for i := 1; i < 256; i++ {
		h.influence[i][0] = prime.AddMod(h.influence[i-1][0], minusBasePowTau)
		for j := 1; j < 256; j++ {
			h.influence[i][j] = prime.AddMod(h.influence[i][j-1], uint128.From64(1))
		}
	}
}
