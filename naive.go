package lce

import (
	"encoding/binary"
	"math/bits"
)

// NaiveWordwise answers LCE queries by direct comparison, accelerated
// with eight-byte blocks for byte texts. It needs no construction and is
// the reference the other indices are tested against; its scan routines
// also serve as the short-range steps of the synchronizing-set indices.
type NaiveWordwise[C Char] struct {
	text []C
}

func NewNaiveWordwise[C Char](text []C) *NaiveWordwise[C] {
	return &NaiveWordwise[C]{text: text}
}

func (d *NaiveWordwise[C]) LCE(i, j int) int {
	return naiveLCE(d.text, len(d.text), i, j)
}

func (d *NaiveWordwise[C]) LCEUneq(i, j int) int {
	return naiveLCEUneq(d.text, len(d.text), i, j)
}

func (d *NaiveWordwise[C]) LCELR(l, r int) int {
	return naiveLCELR(d.text, len(d.text), l, r)
}

func (d *NaiveWordwise[C]) LCEMismatch(i, j int) (bool, int) {
	return mismatchFromLR(len(d.text), i, j, d.LCELR)
}

func (d *NaiveWordwise[C]) IsLeqSuffix(i, j int) bool {
	lce := d.LCEUneq(i, j)
	return isLeqFromLCE(d.text, len(d.text), i, j, lce)
}

func (d *NaiveWordwise[C]) LCEUpTo(i, j, upTo int) (bool, int) {
	return naiveLCEUpTo(d.text, len(d.text), i, j, upTo)
}

func (d *NaiveWordwise[C]) Size() int { return len(d.text) }

func naiveLCE[C Char](text []C, size, i, j int) int {
	if i == j {
		return size - i
	}
	return naiveLCEUneq(text, size, i, j)
}

func naiveLCEUneq[C Char](text []C, size, i, j int) int {
	if i > j {
		i, j = j, i
	}
	return naiveLCELR(text, size, i, j)
}

// naiveLCELR compares text[l..size) against text[r..size). The size
// parameter may be lowered below len(text) to bound the scan.
func naiveLCELR[C Char](text []C, size, l, r int) int {
	if b, ok := any(text).([]byte); ok {
		return wordwiseLCELR(b, size, l, r)
	}
	maxLCE := size - r
	lce := 0
	for lce < maxLCE && text[l+lce] == text[r+lce] {
		lce++
	}
	return lce
}

// naiveLCEUpTo caps the scan at upTo characters and reports whether a
// mismatch occurs within the cap.
func naiveLCEUpTo[C Char](text []C, size, i, j, upTo int) (bool, int) {
	if i == j {
		return false, min(upTo, size-i)
	}
	l, r := min(i, j), max(i, j)
	lceMax := min(size-r, upTo)
	lce := naiveLCELR(text, r+lceMax, l, r)
	return lce < lceMax, lce
}

// wordwiseLCELR is the byte specialization: compare eight bytes at a
// time and locate the mismatching byte with the trailing zero count of
// the xor.
func wordwiseLCELR(text []byte, size, l, r int) int {
	maxLCE := size - r
	lce := 0
	for lce+8 <= maxLCE {
		a := binary.LittleEndian.Uint64(text[l+lce:])
		b := binary.LittleEndian.Uint64(text[r+lce:])
		if x := a ^ b; x != 0 {
			return lce + bits.TrailingZeros64(x)/8
		}
		lce += 8
	}
	for lce < maxLCE && text[l+lce] == text[r+lce] {
		lce++
	}
	return lce
}
