package mersenne

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"lukechampine.com/uint128"
)

func TestMulModGeneric64(t *testing.T) {
	mod63 := uint128.From64(1<<63 - 1)
	a := uint128.From64(16_000_000_000_000_000_000 % (1<<63 - 1))
	b := uint128.From64(15_000_000_000_000_000_000 % (1<<63 - 1))
	// 16000000000000000000 * 15000000000000000000 mod (2^63)-1
	assert.Equal(t, uint128.From64(494952449394867), MulModGeneric(a, b, mod63))

	mod31 := uint128.From64(1<<31 - 1)
	a32 := uint128.From64(4_000_000_000 % (1<<31 - 1))
	b32 := uint128.From64(3_500_000_000 % (1<<31 - 1))
	// 4000000000 * 3500000000 mod (2^31)-1
	assert.Equal(t, uint128.From64(738982825), MulModGeneric(a32, b32, mod31))
}

func TestMulMod128(t *testing.T) {
	a := P127.Reduce(uint128.New(15_000_000_000_000_000_000, 16_000_000_000_000_000_000))
	b := P127.Reduce(uint128.New(16_000_000_000_000_000_000, 15_000_000_000_000_000_000))
	want := uint128.New(1_759_169_045_508_956_047, 9_133_530_719_038_205_195)
	// (16000000000000000000 * 2^64 + 15000000000000000000) *
	// (15000000000000000000 * 2^64 + 16000000000000000000) mod (2^127)-1
	assert.Equal(t, want, P127.MulMod(a, b))
	assert.Equal(t, want, MulModGeneric(a, b, P127.Val))
}

func TestPowMod64(t *testing.T) {
	mod63 := uint128.From64(1<<63 - 1)
	a := uint128.From64(16_000_000_000_000_000_000)
	b := uint128.From64(15_000_000_000_000_000_000)
	// 16000000000000000000 ^ 15000000000000000000 mod (2^63)-1
	assert.Equal(t, uint128.From64(6_500_969_394_908_058_554), PowModGeneric(a, b, mod63))
}

func TestPowMod128(t *testing.T) {
	a := uint128.New(15_000_000_000_000_000_000, 16_000_000_000_000_000_000)
	b := uint128.New(16_000_000_000_000_000_000, 15_000_000_000_000_000_000)
	want := uint128.New(2_777_364_698_120_919_522, 8_277_472_356_650_270_234)
	assert.Equal(t, want, P127.PowMod(a, b))
	assert.Equal(t, want, PowModGeneric(a, b, P127.Val))
}

func TestSmallMod64(t *testing.T) {
	p := P61
	half := p.Val.Rsh(1)
	nums := []uint128.Uint128{
		half,
		p.Val.Sub64(1),
		p.Val,
		p.Val.Add64(1),
		p.Val.Sub64(1).Lsh(1),
	}
	for _, num := range nums {
		want := num.Mod(p.Val)
		assert.Equal(t, want, p.ModNaive(num))
		assert.Equal(t, want, p.SmallMod(num))
		assert.Equal(t, want, p.Reduce(num))
	}
}

func TestSmallMod128(t *testing.T) {
	p := P107
	half := p.Val.Rsh(1)
	nums := []uint128.Uint128{
		half,
		p.Val.Sub64(1),
		p.Val,
		p.Val.Add64(1),
		p.Val.Sub64(1).Lsh(1),
	}
	for _, num := range nums {
		want := num.Mod(p.Val)
		assert.Equal(t, want, p.ModNaive(num))
		assert.Equal(t, want, p.SmallMod(num))
		assert.Equal(t, want, p.Reduce(num))
	}
}

func TestReduceLargeInputs(t *testing.T) {
	for _, p := range []Prime{P61, P89, P107, P127} {
		nums := []uint128.Uint128{
			uint128.Max,
			P127.Val,
			P127.Val.Sub64(1),
			p.Val.Lsh(1),
		}
		for _, num := range nums {
			assert.Equal(t, num.Mod(p.Val), p.Reduce(num), "prime 2^%d-1", p.Exp)
		}
	}
}

func TestAddModInverse(t *testing.T) {
	for _, p := range []Prime{P61, P89, P107, P127} {
		a := p.Reduce(uint128.New(0xdeadbeefcafebabe, 0x0123456789abcdef))
		inv := p.AdditiveInverse(a)
		assert.True(t, p.AddMod(a, inv).IsZero())
		assert.Equal(t, a, p.AddMod(a, uint128.From64(0)))
	}
}

func TestIsMersennePrime(t *testing.T) {
	assert.True(t, IsMersennePrime(P61.Val))
	assert.True(t, IsMersennePrime(P89.Val))
	assert.True(t, IsMersennePrime(P107.Val))
	assert.True(t, IsMersennePrime(P127.Val))
	assert.False(t, IsMersennePrime(uint128.From64(1<<63-1)))
	assert.False(t, IsMersennePrime(uint128.From64(1<<61-2)))
}
