package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentimentBoundedAndDeterministic(t *testing.T) {
	a := NewCurve(11)
	b := NewCurve(11)
	for week := 0; week < 200; week++ {
		for _, ch := range []int{ChannelGeneral, ChannelChemicals, ChannelLogistics} {
			v := a.Sentiment(week, ch)
			assert.GreaterOrEqual(t, v, -1.0)
			assert.LessOrEqual(t, v, 1.0)
			assert.Equal(t, v, b.Sentiment(week, ch), "same seed, same curve")
		}
	}
}

func TestSentimentIsSmooth(t *testing.T) {
	c := NewCurve(3)
	for week := 0; week < 100; week++ {
		delta := c.Sentiment(week+1, ChannelGeneral) - c.Sentiment(week, ChannelGeneral)
		assert.Less(t, abs(delta), 1.2, "adjacent weeks shouldn't jump across the whole range")
	}
}

func TestDescribeCoversRange(t *testing.T) {
	assert.Equal(t, "booming", Describe(0.8))
	assert.Equal(t, "upbeat", Describe(0.2))
	assert.Equal(t, "steady", Describe(0))
	assert.Equal(t, "soft", Describe(-0.2))
	assert.Equal(t, "slumping", Describe(-0.9))
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
