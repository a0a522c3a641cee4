package collector

import (
	"context"
	"sync"
	"time"

	"StockRadar/internal/model"
)

// StaticProvider serves frozen series from memory. It ignores the
// requested window so a recorded input always replays identically.
type StaticProvider struct {
	Series map[string][]model.OHLCV
	Err    error // returned by every request when set
	FailOn int   // 1-based request number that fails with Err; 0 means all

	mu       sync.Mutex
	requests [][]string
}

// NewStaticProvider creates a provider over the given series.
func NewStaticProvider(series map[string][]model.OHLCV) *StaticProvider {
	return &StaticProvider{Series: series}
}

func (p *StaticProvider) Name() string { return "static" }

func (p *StaticProvider) FetchBars(ctx context.Context, symbols []string, _, _ time.Time) (map[string][]model.OHLCV, error) {
	p.mu.Lock()
	p.requests = append(p.requests, append([]string(nil), symbols...))
	n := len(p.requests)
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Err != nil && (p.FailOn == 0 || p.FailOn == n) {
		return nil, p.Err
	}
	out := make(map[string][]model.OHLCV, len(symbols))
	for _, s := range symbols {
		if bars, ok := p.Series[s]; ok {
			out[s] = append([]model.OHLCV(nil), bars...)
		}
	}
	return out, nil
}

// Requests returns the symbol batches requested so far.
func (p *StaticProvider) Requests() [][]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]string, len(p.requests))
	copy(out, p.requests)
	return out
}

// GenerateBars builds one bar per calendar day starting at start.
func GenerateBars(start time.Time, closes []float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c * 0.999,
			High:   c * 1.005,
			Low:    c * 0.995,
			Close:  c,
			Volume: 1000000,
		}
	}
	return bars
}
