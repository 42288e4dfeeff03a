package projector

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/jgoulah/hashfuture/pkg/models"
)

// Horizon is how many payout cycles ahead the extrapolation looks
const Horizon = 1825

// relative slack absorbed before rounding up, so 99.00000000000001 counts as 99
const ceilSlack = 1e-9

// AverageDaysLeft divides the remaining per-H/s amount by the mean per-cycle
// profit of the series. It reports false when that mean is not positive.
func AverageDaysLeft(s models.Series, remainingPerHS float64) (int, bool) {
	if len(s) == 0 {
		return 0, false
	}
	last := s[len(s)-1]
	if last.Day <= 0 {
		return 0, false
	}

	rate := last.Value / float64(last.Day)
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, false
	}

	return ceilDays(remainingPerHS / rate), true
}

// ExtrapolatedDaysLeft fits a least-squares line to the series and returns the
// first cycle, counted from the last observed one, where the line reaches
// targetPerHS. It reports false when the fit is degenerate or the target is
// not reached within Horizon cycles.
func ExtrapolatedDaysLeft(s models.Series, targetPerHS float64) (int, bool) {
	if !hasSpread(s) {
		return 0, false
	}

	xs := make([]float64, len(s))
	ys := make([]float64, len(s))
	for i, pt := range s {
		xs[i] = float64(pt.Day)
		ys[i] = pt.Value
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return 0, false
	}

	lastDay := s[len(s)-1].Day
	for offset := 1; offset <= Horizon; offset++ {
		if alpha+beta*float64(lastDay+offset) >= targetPerHS {
			return offset, true
		}
	}
	return 0, false
}

// hasSpread reports whether the series covers at least two distinct cycles
func hasSpread(s models.Series) bool {
	for _, pt := range s {
		if pt.Day != s[0].Day {
			return true
		}
	}
	return false
}

func ceilDays(x float64) int {
	return int(math.Ceil(x - ceilSlack*math.Max(1, math.Abs(x))))
}
