package chart

import (
	"strings"

	"github.com/jgoulah/hashfuture/pkg/models"
)

var sparkChars = []rune(" ▁▂▃▄▅▆▇█")

// Sparkline renders values as unicode blocks, keeping the most recent
// width values. A flat or short series renders as a baseline.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) < 2 {
		return strings.Repeat("▁", len(values))
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	span := hi - lo
	var b strings.Builder
	for _, v := range values {
		if span < 1e-12 {
			b.WriteRune('▁')
			continue
		}
		idx := int((v - lo) / span * float64(len(sparkChars)-1))
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}

// Payouts extracts the payout amounts of a timeline, oldest first
func Payouts(timeline []models.TimelinePoint) []float64 {
	var out []float64
	for _, pt := range timeline {
		if pt.PayoutUSD != 0 {
			out = append(out, pt.PayoutUSD)
		}
	}
	return out
}
