package calculator

import (
	"errors"
	"math"

	"StockRadar/internal/model"
)

// RSIPeriod is the lookback of the relative strength index.
const RSIPeriod = 14

// CalculateRSI computes the exponentially smoothed RSI of the latest bar.
// See RSIFromCloses.
func CalculateRSI(bars []model.OHLCV, period int) (float64, error) {
	return RSIFromCloses(extractCloses(bars), period)
}

// RSIFromCloses smooths daily gains and losses with an exponential moving
// average of alpha = 1/period (center of mass period-1), seeded with the
// first close-to-close change rather than a simple mean. The recurrence
// matches pandas ewm(com=period-1, adjust=False) step for step.
//
// A zero smoothed loss with a positive smoothed gain yields 100. When both
// are zero the result is NaN and callers must treat it as indeterminate.
func RSIFromCloses(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(closes) < 2 {
		return math.NaN(), ErrInsufficientHistory
	}

	alpha := 1.0 / (1.0 + float64(period-1))
	oldWt := 1.0 - alpha

	avgGain, avgLoss := splitChange(closes[1] - closes[0])
	for i := 2; i < len(closes); i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain = ewmStep(avgGain, gain, oldWt, alpha)
		avgLoss = ewmStep(avgLoss, loss, oldWt, alpha)
	}

	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), nil
}

func splitChange(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func ewmStep(prev, cur, oldWt, newWt float64) float64 {
	if prev == cur {
		return prev
	}
	return (oldWt*prev + newWt*cur) / (oldWt + newWt)
}
