// Package entropy provides the stochastic sources behind every simulation roll.
// The default source is a seeded PRNG so runs replay deterministically; a
// random.org-backed live source is available for non-reproducible runs.
package entropy

import (
	"math/rand"
	"sync"
)

// Source is the single interface every stochastic draw in the simulation
// goes through. Implementations need not be safe for concurrent use; the
// tick loop is single-threaded.
type Source interface {
	// Float returns a uniform float64 in [0, 1).
	Float() float64
	// IntN returns a uniform int in [0, n).
	IntN(n int) int
}

// Seeded is a deterministic Source backed by math/rand. Two Seeded sources
// created with the same seed produce identical draw sequences.
type Seeded struct {
	rng *rand.Rand
}

// NewSeeded creates a deterministic source from a seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewSource(seed))}
}

func (s *Seeded) Float() float64 { return s.rng.Float64() }
func (s *Seeded) IntN(n int) int { return s.rng.Intn(n) }

// Between returns a uniform float64 in [lo, hi) drawn from src.
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float()*(hi-lo)
}

// IntBetween returns a uniform int in [lo, hi] (inclusive) drawn from src.
func IntBetween(src Source, lo, hi int) int {
	return lo + src.IntN(hi-lo+1)
}

// Live wraps the random.org client as a Source, falling back to crypto/rand
// when the API is unavailable. Safe for concurrent use.
type Live struct {
	mu     sync.Mutex
	client *Client
}

// NewLive creates a live source. A nil client degrades to pure crypto/rand.
func NewLive(client *Client) *Live {
	return &Live{client: client}
}

func (l *Live) Float() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return FloatFromSource(l.client)
}

func (l *Live) IntN(n int) int {
	f := l.Float()
	i := int(f * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
