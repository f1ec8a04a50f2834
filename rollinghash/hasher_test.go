package rollinghash

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lorem = "Lorem ipsum dolor sit amet, consetetur sadipscing elitr, sed diam " +
	"nonumy eirmod tempor invidunt ut labore et dolore magna aliquyam erat, " +
	"sed diam voluptua. At vero eos et accusam et justo duo dolores et ea " +
	"rebum. Stet clita kasd gubergren, no sea takimata sanctus est Lorem " +
	"ipsum dolor sit amet. Lorem ipsum dolor sit amet, consetetur sadipscing " +
	"elitr, sed diam nonumy eirmod tempor invidunt ut labore et dolore magna " +
	"aliquyam erat, sed diam voluptua. At vero eos et accusam et justo duo " +
	"dolores et ea rebum. Stet clita kasd gubergren, no sea takimata sanctus " +
	"est Lorem ipsum dolor sit amet."

// Rolling across the whole text must end at the same fingerprint a fresh
// hasher computes over the last window.
func TestRollInvariance(t *testing.T) {
	text := []byte(lorem)
	const tau = 16

	h := NewHasher(text, 0, tau, 123123)
	for i := 0; i < len(text)-tau; i++ {
		h.RollWindow()
	}
	end := NewHasher(text, len(text)-tau, tau, 123123)
	assert.Equal(t, end.Fp(), h.Fp())
}

func TestRollInvarianceRandomBase(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	text := make([]byte, 4096)
	r.Read(text)
	const tau = 16

	// Base 0 draws a random base; both hashers must share it.
	h := NewHasher(text, 0, tau, 0)
	base := h.Base().Lo
	require.GreaterOrEqual(t, base, uint64(257))
	require.LessOrEqual(t, base, uint64(MaxBase))

	for i := 0; i < len(text)-tau; i++ {
		h.RollWindow()
	}
	end := NewHasher(text, len(text)-tau, tau, base)
	assert.Equal(t, end.Fp(), h.Fp())
}

// Roll with explicit out/in characters must agree with the windowed form.
func TestRollForms(t *testing.T) {
	text := []byte(strings.Repeat(lorem, 2))
	const tau = 32

	a := NewHasher(text, 0, tau, 296819)
	b := NewHasher(text, 0, tau, 296819)
	for i := 0; i < 200; i++ {
		fpA := a.RollWindow()
		fpB := b.Roll(text[i], text[i+tau])
		assert.Equal(t, fpA, fpB, "step %d", i)
	}
}

// Equal windows hash equally, and the fingerprint stays below the prime.
func TestEqualWindowsEqualFps(t *testing.T) {
	text := []byte("abcabcabcabcabcabcabcabcabcabc")
	const tau = 3
	h := NewHasher(text, 0, tau, 296819)
	first := h.Fp()
	assert.Less(t, first.Cmp(h.Prime()), 0)
	for i := 0; i < len(text)-tau; i++ {
		fp := h.RollWindow()
		if (i+1)%3 == 0 {
			assert.Equal(t, first, fp, "window at %d repeats the text period", i+1)
		}
	}
}

func TestRingBuffer(t *testing.T) {
	rb := newRingBuffer[int](5) // rounded up to 8
	for i := 0; i < 20; i++ {
		rb.pushBack(i * i)
	}
	assert.Equal(t, 20, rb.len())
	for i := 12; i < 20; i++ {
		assert.Equal(t, i*i, rb.at(i))
	}

	rb = newRingBuffer[int](4)
	rb.seek(100)
	rb.pushBack(7)
	assert.Equal(t, 7, rb.at(100))
	assert.Equal(t, 101, rb.len())
}
