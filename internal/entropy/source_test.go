package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededReproducible(t *testing.T) {
	a := NewSeeded(99)
	b := NewSeeded(99)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, a.Float(), b.Float())
	}
}

func TestSeededRanges(t *testing.T) {
	s := NewSeeded(1)
	for i := 0; i < 1000; i++ {
		f := s.Float()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)

		n := s.IntN(7)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 7)
	}
}

func TestBetweenHelpers(t *testing.T) {
	s := NewSeeded(2)
	seenLo, seenHi := false, false
	for i := 0; i < 1000; i++ {
		f := Between(s, 0.50, 0.75)
		assert.GreaterOrEqual(t, f, 0.50)
		assert.Less(t, f, 0.75)

		n := IntBetween(s, 3, 5)
		assert.GreaterOrEqual(t, n, 3)
		assert.LessOrEqual(t, n, 5)
		if n == 3 {
			seenLo = true
		}
		if n == 5 {
			seenHi = true
		}
	}
	assert.True(t, seenLo, "IntBetween includes the lower bound")
	assert.True(t, seenHi, "IntBetween includes the upper bound")
}

func TestLiveFallsBackToCrypto(t *testing.T) {
	// No API key → nil client → pure crypto/rand fallback.
	l := NewLive(NewClient(""))
	for i := 0; i < 100; i++ {
		f := l.Float()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)

		n := l.IntN(4)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 4)
	}
}
