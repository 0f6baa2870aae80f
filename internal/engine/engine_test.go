package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepAdvancesWeeks(t *testing.T) {
	eng := NewEngine()
	var seen []int
	eng.OnWeek = func(week int) { seen = append(seen, week) }

	for i := 0; i < 3; i++ {
		eng.Step()
	}
	assert.Equal(t, []int{1, 2, 3}, seen)
	assert.Equal(t, 3, eng.Week)
}

func TestStepWithoutCallback(t *testing.T) {
	eng := NewEngine()
	eng.Week = 41
	eng.Step() // no OnWeek wired; must not panic
	assert.Equal(t, 42, eng.Week)
}

func TestContextReproducible(t *testing.T) {
	a := NewContext(7)
	b := NewContext(7)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Rand.Float(), b.Rand.Float())
	}
	assert.Equal(t, int64(7), a.Seed)
	assert.False(t, a.LLM.Enabled(), "no API key, narrative disabled")
}
