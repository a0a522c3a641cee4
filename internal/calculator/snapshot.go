package calculator

import (
	"errors"
	"fmt"
	"math"

	"StockRadar/internal/model"
)

var (
	// ErrInsufficientHistory means the series is too short for MA200.
	ErrInsufficientHistory = errors.New("not enough history")
	// ErrIndeterminateRSI means the RSI came out as NaN.
	ErrIndeterminateRSI = errors.New("rsi is indeterminate")
	// ErrMalformedSeries means the series holds bars no price can have.
	ErrMalformedSeries = errors.New("malformed series")
)

// Snapshot computes the latest close, MA200 and RSI of a series.
// Bars without a finite close are dropped first, the way missing rows
// are dropped from a provider response.
func Snapshot(series model.PriceSeries) (*model.IndicatorSnapshot, error) {
	bars := make([]model.OHLCV, 0, len(series.Bars))
	for _, b := range series.Bars {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			continue
		}
		if b.Close <= 0 {
			return nil, fmt.Errorf("%w: %s close %.4f on %s", ErrMalformedSeries,
				series.Symbol, b.Close, b.Time.Format("2006-01-02"))
		}
		bars = append(bars, b)
	}
	if len(bars) < MA200Period {
		return nil, fmt.Errorf("%w: %s has %d bars, need %d", ErrInsufficientHistory,
			series.Symbol, len(bars), MA200Period)
	}

	ma, err := CalculateMA200(bars)
	if err != nil {
		return nil, err
	}
	rsi, err := CalculateRSI(bars, RSIPeriod)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(rsi) {
		return nil, fmt.Errorf("%w: %s", ErrIndeterminateRSI, series.Symbol)
	}

	last := bars[len(bars)-1]
	return &model.IndicatorSnapshot{
		Symbol: series.Symbol,
		Date:   last.Time,
		Close:  last.Close,
		MA200:  ma,
		RSI:    rsi,
	}, nil
}
