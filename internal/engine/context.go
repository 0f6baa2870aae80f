// Package engine provides the weekly tick loop and the simulation context
// that threads seeded randomness and optional services through the system.
package engine

import (
	"github.com/jmfarrow/laundrosim/internal/entropy"
	"github.com/jmfarrow/laundrosim/internal/llm"
)

// SimulationContext carries everything the simulation's components share:
// the entropy source behind every stochastic roll and the optional LLM
// client for flavor text. There are no package-level singletons; construct
// one context and pass it down.
type SimulationContext struct {
	Seed int64
	Rand entropy.Source
	LLM  *llm.Client // nil = narrative features disabled
}

// NewContext creates a deterministic context from a seed. Runs constructed
// from the same seed replay identically.
func NewContext(seed int64) *SimulationContext {
	return &SimulationContext{
		Seed: seed,
		Rand: entropy.NewSeeded(seed),
	}
}

// NewLiveContext creates a context drawing from a live entropy source.
// Not reproducible; used for long-running hosted simulations.
func NewLiveContext(seed int64, client *entropy.Client) *SimulationContext {
	return &SimulationContext{
		Seed: seed,
		Rand: entropy.NewLive(client),
	}
}
