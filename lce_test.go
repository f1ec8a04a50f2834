package lce

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// iotaTwice builds a text whose two halves are identical runs of
// consecutive values starting at 0x80, wrapping at the type maximum.
func iotaTwice(n int) []byte {
	text := make([]byte, n)
	half := n / 2
	for i := 0; i < half; i++ {
		text[i] = 0x80 + byte(i)
		text[half+i] = text[i]
	}
	return text
}

func iotaTwiceWide[C Char](n int, maxVal C) []C {
	text := make([]C, n)
	half := n / 2
	v := maxVal / 2
	for i := 0; i < half; i++ {
		text[i] = v + C(i)
		text[half+i] = text[i]
	}
	return text
}

var testOptions = &Options{Tau: 16, Base: 296819}

// buildAll constructs every byte-text variant over its own copy of the
// text. FP gets a private copy because it rewrites its buffer.
func buildAll(t *testing.T, text []byte) map[string]Index {
	t.Helper()
	variants := map[string]Index{
		"naive": NewNaiveWordwise(text),
	}

	classic, err := NewClassic[byte, uint32](text, testOptions)
	require.NoError(t, err)
	variants["classic"] = classic

	fpBuf := append([]byte(nil), text...)
	fp, err := NewFP(fpBuf, testOptions)
	require.NoError(t, err)
	variants["fp"] = fp

	if len(text) >= 5*testOptions.Tau {
		sssNaive, err := NewSSSNaive[uint32](text, testOptions)
		require.NoError(t, err)
		variants["sss_naive"] = sssNaive

		short, err := NewSSSNoSS[uint32](text, testOptions)
		require.NoError(t, err)
		variants["sss_noss_short"] = short

		longOpts := *testOptions
		longOpts.PreferLong = true
		long, err := NewSSSNoSS[uint32](text, &longOpts)
		require.NoError(t, err)
		variants["sss_noss_long"] = long
	}
	return variants
}

// The iota-twice scenario: both halves identical, so the only nonzero
// LCEs are across the halves.
func TestSimple(t *testing.T) {
	text := iotaTwice(2000)
	for name, ds := range buildAll(t, text) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 2000, ds.LCE(0, 0))
			assert.Equal(t, 1000, ds.LCE(0, 1000))
			assert.Equal(t, 0, ds.LCE(500, 1000))
		})
	}
}

func TestVariantOperations(t *testing.T) {
	text := iotaTwice(2000)
	for name, ds := range buildAll(t, text) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 1000, ds.LCELR(0, 1000))
			assert.Equal(t, 0, ds.LCE(500, 1000))

			mismatch, lce := ds.LCEMismatch(1000, 0)
			assert.False(t, mismatch)
			assert.Equal(t, 1000, lce)
			mismatch, lce = ds.LCEMismatch(1000, 500)
			assert.True(t, mismatch)
			assert.Equal(t, 0, lce)

			assert.False(t, ds.IsLeqSuffix(500, 1500))
			assert.True(t, ds.IsLeqSuffix(1500, 500))
			assert.True(t, ds.IsLeqSuffix(0, 10))
			assert.False(t, ds.IsLeqSuffix(10, 0))

			mismatch, lce = ds.LCEUpTo(1000, 0, 200)
			assert.False(t, mismatch)
			assert.Equal(t, 200, lce)
			mismatch, lce = ds.LCEUpTo(1000, 500, 200)
			assert.True(t, mismatch)
			assert.Equal(t, 0, lce)
		})
	}
}

// Suffix comparison over the 200-byte iota-twice text: the suffix at
// 150 is a proper prefix of the suffix at 50.
func TestIsLeqSuffixSmall(t *testing.T) {
	text := iotaTwice(200)
	for name, ds := range buildAll(t, text) {
		t.Run(name, func(t *testing.T) {
			assert.False(t, ds.IsLeqSuffix(50, 150))
			assert.True(t, ds.IsLeqSuffix(150, 50))
			assert.True(t, ds.IsLeqSuffix(0, 50))
			assert.False(t, ds.IsLeqSuffix(50, 0))
		})
	}
}

// Sorting positions by IsLeqSuffix must reproduce the suffix array.
func TestSuffixSortLaw(t *testing.T) {
	text := iotaTwice(200)
	ds := NewNaiveWordwise(text)

	order := make([]int, len(text))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return ds.IsLeqSuffix(order[a], order[b])
	})

	sa, err := BuildSuffixArray(text)
	require.NoError(t, err)
	assert.Equal(t, sa, order)
}

func randomText(n int, alphabet byte, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	text := make([]byte, n)
	for i := range text {
		text[i] = 'a' + byte(r.Intn(int(alphabet)))
	}
	return text
}

// Agreement: every variant must answer exactly like the naive scan, on
// a plain random text and on one dominated by runs.
func TestVariantAgreement(t *testing.T) {
	texts := map[string][]byte{
		"random": randomText(5000, 4, 42),
		"runs": []byte("prefix-prefix-" + strings.Repeat("ab", 2000) + "::" +
			string(randomText(1000, 3, 7)) + strings.Repeat("xyz", 700) + "suffix"),
	}
	for textName, text := range texts {
		naive := NewNaiveWordwise(text)
		variants := buildAll(t, text)
		r := rand.New(rand.NewSource(99))
		for name, ds := range variants {
			t.Run(textName+"/"+name, func(t *testing.T) {
				require.Equal(t, len(text), ds.Size())
				for q := 0; q < 2000; q++ {
					i := r.Intn(len(text))
					j := r.Intn(len(text))
					want := naive.LCE(i, j)
					got := ds.LCE(i, j)
					if got != want {
						t.Fatalf("lce(%d, %d) = %d, want %d", i, j, got, want)
					}
					if got2 := ds.LCE(j, i); got2 != want {
						t.Fatalf("lce(%d, %d) = %d not symmetric (want %d)", j, i, got2, want)
					}
				}
			})
		}
	}
}

// Reflexivity and the mismatch predicate, on every variant.
func TestReflexivityAndMismatch(t *testing.T) {
	text := randomText(3000, 3, 5)
	for name, ds := range buildAll(t, text) {
		t.Run(name, func(t *testing.T) {
			for _, i := range []int{0, 1, 500, 1500, len(text) - 1} {
				assert.Equal(t, len(text)-i, ds.LCE(i, i))
			}
			r := rand.New(rand.NewSource(3))
			for q := 0; q < 500; q++ {
				i, j := r.Intn(len(text)), r.Intn(len(text))
				mismatch, lce := ds.LCEMismatch(i, j)
				assert.Equal(t, max(i, j)+lce < len(text), mismatch,
					"mismatch flag at (%d, %d)", i, j)
			}
		})
	}
}

// Determinism: two builds with the same seeded base answer identically.
func TestDeterministicBuilds(t *testing.T) {
	text := randomText(4000, 4, 17)
	a, err := NewSSSNoSS[uint32](text, testOptions)
	require.NoError(t, err)
	b, err := NewSSSNoSS[uint32](text, testOptions)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(23))
	for q := 0; q < 1000; q++ {
		i, j := r.Intn(len(text)), r.Intn(len(text))
		assert.Equal(t, a.LCE(i, j), b.LCE(i, j))
	}
}

func TestLCEUpToShapes(t *testing.T) {
	text := randomText(2000, 3, 29)
	naive := NewNaiveWordwise(text)
	for name, ds := range buildAll(t, text) {
		t.Run(name, func(t *testing.T) {
			r := rand.New(rand.NewSource(31))
			for q := 0; q < 500; q++ {
				i, j := r.Intn(len(text)), r.Intn(len(text))
				upTo := 1 + r.Intn(200)
				full := naive.LCE(i, j)
				capMax := min(len(text)-max(i, j), upTo)
				wantLen := min(full, capMax)
				mismatch, lce := ds.LCEUpTo(i, j, upTo)
				assert.Equal(t, wantLen, lce, "lceUpTo(%d, %d, %d)", i, j, upTo)
				assert.Equal(t, wantLen < capMax, mismatch)
			}
		})
	}
}

func TestClassicWideAlphabets(t *testing.T) {
	text16 := iotaTwiceWide[uint16](2000, 1<<16-1)
	ds16, err := NewClassic[uint16, uint32](text16, nil)
	require.NoError(t, err)
	assert.Equal(t, 2000, ds16.LCE(0, 0))
	assert.Equal(t, 1000, ds16.LCE(0, 1000))
	assert.Equal(t, 0, ds16.LCE(500, 1000))

	text32 := iotaTwiceWide[uint32](400, 1<<32-1)
	ds32, err := NewClassic[uint32, uint64](text32, nil)
	require.NoError(t, err)
	assert.Equal(t, 200, ds32.LCE(0, 200))

	text64 := iotaTwiceWide[uint64](400, 1<<63)
	ds64, err := NewClassic[uint64, uint64](text64, nil)
	require.NoError(t, err)
	assert.Equal(t, 200, ds64.LCE(0, 200))
	assert.True(t, ds64.IsLeqSuffix(200, 0))
}

func TestClassicErrors(t *testing.T) {
	_, err := NewClassic[byte, uint32]([]byte{}, nil)
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestSSSErrors(t *testing.T) {
	_, err := NewSSSNaive[uint32](make([]byte, 100), &Options{Tau: 64})
	assert.ErrorIs(t, err, ErrTextTooShort)
	_, err = NewSSSNoSS[uint32](make([]byte, 100), &Options{Tau: 24})
	assert.Error(t, err)
}
