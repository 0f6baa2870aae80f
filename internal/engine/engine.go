// Weekly tick loop. One tick = one simulated week.
package engine

import (
	"log/slog"
	"time"
)

// Engine drives the simulation forward one week at a time.
type Engine struct {
	Week     int           // Current week counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = one week per interval, 0 = paused
	Interval time.Duration // Base tick interval
	Running  bool

	// OnWeek runs once per simulated week. All market mutation happens
	// inside this callback; it must complete as one logical unit.
	OnWeek func(week int)
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: 5 * time.Second,
	}
}

// Run starts the tick loop. Blocks until Stop is called.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("simulation engine started", "week", e.Week, "speed", e.Speed)

	for e.Running {
		if e.Speed <= 0 {
			// Paused.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		e.Step()

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "week", e.Week)
}

// Stop halts the tick loop after the current week completes.
func (e *Engine) Stop() {
	e.Running = false
}

// Step advances the simulation by exactly one week. Exposed so hosts that
// drive the clock themselves (tests, batch runs) can skip the timed loop.
func (e *Engine) Step() {
	e.Week++
	if e.OnWeek != nil {
		e.OnWeek(e.Week)
	}
}
