// Package trend provides a smooth week-to-week market sentiment curve.
// Sentiment colors vendor outreach copy and the status API; it never feeds
// into pricing, tiers, or event rolls.
package trend

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Curve maps (week, channel) to a sentiment value in [-1, 1] using smooth
// gradient noise, so consecutive weeks read as a continuous mood rather
// than independent coin flips.
type Curve struct {
	noise opensimplex.Noise
}

// Channels separate sentiment by supply category so one vendor's pitch can
// run hot while another runs cold in the same week.
const (
	ChannelGeneral = iota
	ChannelChemicals
	ChannelLogistics
)

// NewCurve creates a sentiment curve from a seed.
func NewCurve(seed int64) *Curve {
	return &Curve{noise: opensimplex.NewNormalized(seed)}
}

// Sentiment returns the sentiment for a channel at a given week, in [-1, 1].
func (c *Curve) Sentiment(week, channel int) float64 {
	// Stretch the week axis so the mood shifts over ~a month, not per tick.
	v := c.noise.Eval2(float64(week)*0.18, float64(channel)*7.31)
	return v*2 - 1
}

// Describe renders a sentiment value as dashboard-friendly text.
func Describe(v float64) string {
	switch {
	case v > 0.4:
		return "booming"
	case v > 0.1:
		return "upbeat"
	case v > -0.1:
		return "steady"
	case v > -0.4:
		return "soft"
	default:
		return "slumping"
	}
}
