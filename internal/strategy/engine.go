package strategy

import (
	"math"

	"StockRadar/internal/model"
)

// Verdict is the classification of one snapshot. Buy and Sell are
// evaluated independently, so both may be set.
type Verdict struct {
	Buy  *model.Classification
	Sell *model.Classification
}

// Signals returns the tags of the verdict, buy side first.
func (v Verdict) Signals() []model.Signal {
	var out []model.Signal
	if v.Buy != nil {
		out = append(out, v.Buy.Signal)
	}
	if v.Sell != nil {
		out = append(out, v.Sell.Signal)
	}
	return out
}

// Empty reports whether the snapshot produced no rows.
func (v Verdict) Empty() bool { return v.Buy == nil && v.Sell == nil }

// Deviation returns how far close sits above ma, in percent.
func Deviation(close, ma float64) float64 {
	return (close - ma) / ma * 100
}

// Classify applies the rules to a snapshot. A snapshot whose values are
// not all finite yields an empty verdict.
func Classify(snap *model.IndicatorSnapshot, name string, rules Rules) Verdict {
	var v Verdict
	if snap == nil || !finite(snap.Close, snap.MA200, snap.RSI) {
		return v
	}

	aboveMA := snap.Close > snap.MA200
	switch {
	case aboveMA && snap.RSI < rules.BuyRSI:
		v.Buy = row(snap, name, model.SignalStrongBuy)
	case aboveMA && snap.RSI < rules.WatchRSI:
		v.Buy = row(snap, name, model.SignalWatch)
	}

	if snap.RSI > rules.SellRSI {
		v.Sell = row(snap, name, model.SignalOverheated)
	}
	return v
}

func row(snap *model.IndicatorSnapshot, name string, sig model.Signal) *model.Classification {
	c := &model.Classification{
		Symbol: snap.Symbol,
		Name:   name,
		Signal: sig,
		Date:   snap.Date,
		Close:  snap.Close,
		MA200:  snap.MA200,
		RSI:    snap.RSI,
	}
	if sig.IsBuySide() {
		c.Deviation = Deviation(snap.Close, snap.MA200)
	}
	return c
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
