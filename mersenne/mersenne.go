// Package mersenne implements modular arithmetic over Mersenne primes
// p = 2^e - 1 on 128-bit values. Reduction exploits that
// (x mod 2^e) + (x >> e) is congruent to x modulo p, so the common case
// needs only a shift, an add and a mask instead of a division.
package mersenne

import "lukechampine.com/uint128"

// Prime is a Mersenne prime 2^Exp - 1.
type Prime struct {
	Exp uint
	Val uint128.Uint128
}

var (
	P61  = Prime{Exp: 61, Val: uint128.From64(1<<61 - 1)}
	P89  = Prime{Exp: 89, Val: uint128.New(^uint64(0), 1<<25-1)}
	P107 = Prime{Exp: 107, Val: uint128.New(^uint64(0), 1<<43-1)}
	P127 = Prime{Exp: 127, Val: uint128.New(^uint64(0), 1<<63-1)}
)

var mersenneExponents = [...]uint{2, 3, 5, 7, 13, 17, 19, 31, 61, 89, 107, 127}

// IsMersennePrime reports whether num is 2^e - 1 for a prime-yielding e.
func IsMersennePrime(num uint128.Uint128) bool {
	exp := uint(num.Len())
	if !num.Add64(1).Equals(uint128.From64(1).Lsh(exp)) {
		return false
	}
	for _, e := range mersenneExponents {
		if e == exp {
			return true
		}
	}
	return false
}

// SmallMod returns num mod p for num < 2*(p-1).
func (p Prime) SmallMod(num uint128.Uint128) uint128.Uint128 {
	num = num.And(p.Val).Add(num.Rsh(p.Exp))
	if num.Cmp(p.Val) >= 0 {
		num = num.Sub(p.Val)
	}
	return num
}

// Reduce returns num mod p for arbitrary 128-bit num.
func (p Prime) Reduce(num uint128.Uint128) uint128.Uint128 {
	num = num.And(p.Val).Add(num.Rsh(p.Exp))
	num = num.And(p.Val).Add(num.Rsh(p.Exp))
	if num.Cmp(p.Val) >= 0 {
		num = num.Sub(p.Val)
	}
	return num
}

// ModNaive returns num mod p using the generic division operator.
func (p Prime) ModNaive(num uint128.Uint128) uint128.Uint128 {
	return num.Mod(p.Val)
}

// AddMod returns a+b mod p. Both inputs must already be reduced.
func (p Prime) AddMod(a, b uint128.Uint128) uint128.Uint128 {
	return p.SmallMod(a.AddWrap(b))
}

// AdditiveInverse returns -a mod p. The input must already be reduced.
func (p Prime) AdditiveInverse(a uint128.Uint128) uint128.Uint128 {
	return p.SmallMod(p.Val.Sub(a))
}

// MulMod returns a*b mod p by binary expansion, reducing after every step.
// Both inputs must already be reduced; safe whenever
// bitwidth(p) + 1 <= 128, which holds for all supported primes.
func (p Prime) MulMod(a, b uint128.Uint128) uint128.Uint128 {
	var res uint128.Uint128
	for !b.IsZero() {
		if b.Lo&1 == 1 {
			res = p.SmallMod(res.AddWrap(a))
		}
		a = p.SmallMod(a.Lsh(1))
		b = b.Rsh(1)
	}
	return res
}

// PowMod returns base^exp mod p.
func (p Prime) PowMod(base, exp uint128.Uint128) uint128.Uint128 {
	res := uint128.From64(1)
	base = p.Reduce(base)
	for !exp.IsZero() {
		if exp.Lo&1 == 1 {
			res = p.MulMod(res, base)
		}
		base = p.MulMod(base, base)
		exp = exp.Rsh(1)
	}
	return res
}

// MulModGeneric returns a*b mod prime for an arbitrary (not necessarily
// Mersenne) prime, by binary expansion with a full reduction per step.
func MulModGeneric(a, b, prime uint128.Uint128) uint128.Uint128 {
	var res uint128.Uint128
	a = a.Mod(prime)
	for !b.IsZero() {
		if b.Lo&1 == 1 {
			res = res.AddWrap(a).Mod(prime)
		}
		a = a.Lsh(1).Mod(prime)
		b = b.Rsh(1)
	}
	return res
}

// PowModGeneric returns base^exp mod prime for an arbitrary prime.
func PowModGeneric(base, exp, prime uint128.Uint128) uint128.Uint128 {
	res := uint128.From64(1)
	base = base.Mod(prime)
	for !exp.IsZero() {
		if exp.Lo&1 == 1 {
			res = MulModGeneric(res, base, prime)
		}
		base = MulModGeneric(base, base, prime)
		exp = exp.Rsh(1)
	}
	return res
}
