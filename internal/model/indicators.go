package model

import "time"

// IndicatorSnapshot holds the latest indicator values of one symbol.
// It only lives for the duration of a scan.
type IndicatorSnapshot struct {
	Symbol string
	Date   time.Time
	Close  float64
	MA200  float64
	RSI    float64
}
