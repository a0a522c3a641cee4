package strategy

import (
	"fmt"
	"math"
)

// Rules holds the RSI thresholds of the MA200 + RSI strategy.
// All comparisons are strict.
type Rules struct {
	BuyRSI   float64 // close above MA200 and RSI below this: strong buy
	WatchRSI float64 // close above MA200 and RSI below this: watch
	SellRSI  float64 // RSI above this: overheated
}

// DefaultRules returns the 30 / 40 / 70 thresholds.
func DefaultRules() Rules {
	return Rules{BuyRSI: 30, WatchRSI: 40, SellRSI: 70}
}

// Validate checks that the thresholds are ordered inside [0,100].
func (r Rules) Validate() error {
	for _, v := range []float64{r.BuyRSI, r.WatchRSI, r.SellRSI} {
		if math.IsNaN(v) || v < 0 || v > 100 {
			return fmt.Errorf("rsi threshold %.2f outside [0,100]", v)
		}
	}
	if r.BuyRSI > r.WatchRSI {
		return fmt.Errorf("buy threshold %.2f above watch threshold %.2f", r.BuyRSI, r.WatchRSI)
	}
	if r.WatchRSI > r.SellRSI {
		return fmt.Errorf("watch threshold %.2f above sell threshold %.2f", r.WatchRSI, r.SellRSI)
	}
	return nil
}
