package model

import "time"

// Signal is the classification tag of a symbol.
type Signal int

const (
	SignalNone Signal = iota
	SignalStrongBuy
	SignalWatch
	SignalOverheated
)

func (s Signal) String() string {
	switch s {
	case SignalStrongBuy:
		return "STRONG_BUY"
	case SignalWatch:
		return "WATCH"
	case SignalOverheated:
		return "OVERHEATED"
	default:
		return "NONE"
	}
}

// IsBuySide reports whether rows with this signal belong to the buy table.
func (s Signal) IsBuySide() bool {
	return s == SignalStrongBuy || s == SignalWatch
}

// Classification is one result row produced by the strategy.
type Classification struct {
	Symbol    string
	Name      string
	Signal    Signal
	Date      time.Time
	Close     float64
	MA200     float64
	RSI       float64
	Deviation float64 // percent above MA200, buy side only
}

// ScanResult holds the rows of one scan in universe order.
type ScanResult struct {
	Buy  []Classification // StrongBuy and Watch
	Sell []Classification // Overheated
}

// Empty reports whether neither side has rows.
func (r ScanResult) Empty() bool {
	return len(r.Buy) == 0 && len(r.Sell) == 0
}
