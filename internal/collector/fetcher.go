package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"StockRadar/internal/logger"
	"StockRadar/internal/model"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize    = 50
	DefaultLookbackDays = 400
)

var (
	// ErrProviderFailure matches every error caused by a failed provider request.
	ErrProviderFailure = errors.New("provider failure")
	// ErrNoSymbols is returned when Fetch is called without symbols.
	ErrNoSymbols = errors.New("no symbols to fetch")
)

// Provider retrieves daily bars for a set of symbols over [start, end).
// Symbols the provider has no data for are absent from the result.
// A non-nil error means the whole request failed.
type Provider interface {
	FetchBars(ctx context.Context, symbols []string, start, end time.Time) (map[string][]model.OHLCV, error)
	Name() string
}

// Sink receives every series the fetcher retrieved.
type Sink interface {
	RecordBars(symbol string, bars []model.OHLCV) error
}

// ProviderError describes a failed batch request.
type ProviderError struct {
	Provider string
	Batch    int // 1-based
	From, To int // 1-based symbol positions, inclusive
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: batch %d (symbols %d-%d): %v", e.Provider, e.Batch, e.From, e.To, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProviderFailure }

// BatchProgress is reported once per completed batch.
type BatchProgress struct {
	Done     int // batches completed
	Batches  int
	From, To int
	Total    int // symbols requested
}

func (p BatchProgress) String() string {
	return fmt.Sprintf("downloaded %d ~ %d of %d (batch %d/%d)", p.From, p.To, p.Total, p.Done, p.Batches)
}

// FetchConfig tunes a Fetcher. Zero values take the defaults.
type FetchConfig struct {
	BatchSize    int
	LookbackDays int
	Concurrency  int
}

// Fetcher splits a symbol set into provider-sized batches and merges the
// responses.
type Fetcher struct {
	Provider    Provider
	BatchSize   int
	Lookback    time.Duration
	Concurrency int
	Sink        Sink
	Now         func() time.Time
}

// NewFetcher creates a Fetcher with defaults applied.
func NewFetcher(p Provider, cfg FetchConfig) *Fetcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = DefaultLookbackDays
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Fetcher{
		Provider:    p,
		BatchSize:   cfg.BatchSize,
		Lookback:    time.Duration(cfg.LookbackDays) * 24 * time.Hour,
		Concurrency: cfg.Concurrency,
		Now:         time.Now,
	}
}

// Window returns the request range ending one day after now so the latest
// session is included whatever the time zone.
func (f *Fetcher) Window(now time.Time) (start, end time.Time) {
	return now.Add(-f.Lookback), now.AddDate(0, 0, 1)
}

// Batches partitions symbols into groups of at most size.
func Batches(symbols []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]string
	for i := 0; i < len(symbols); i += size {
		j := i + size
		if j > len(symbols) {
			j = len(symbols)
		}
		out = append(out, symbols[i:j])
	}
	return out
}

// Fetch retrieves the series of every symbol. Any failed batch aborts the
// fetch with a *ProviderError; symbols missing from a successful response
// are simply absent from the result.
func (f *Fetcher) Fetch(ctx context.Context, symbols []string, onBatch func(BatchProgress)) (map[string]model.PriceSeries, error) {
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	start, end := f.Window(now())
	batches := Batches(symbols, f.BatchSize)
	responses := make([]map[string][]model.OHLCV, len(batches))

	var mu sync.Mutex
	done := 0
	report := func(idx int) {
		mu.Lock()
		defer mu.Unlock()
		done++
		if onBatch == nil {
			return
		}
		from := idx*f.BatchSize + 1
		onBatch(BatchProgress{
			Done:    done,
			Batches: len(batches),
			From:    from,
			To:      from + len(batches[idx]) - 1,
			Total:   len(symbols),
		})
	}

	run := func(ctx context.Context, idx int) error {
		batch := batches[idx]
		from := idx*f.BatchSize + 1
		logger.Debug("fetching batch %d/%d (%d ~ %d) from %s", idx+1, len(batches), from, from+len(batch)-1, f.Provider.Name())
		resp, err := f.Provider.FetchBars(ctx, batch, start, end)
		if err != nil {
			return &ProviderError{
				Provider: f.Provider.Name(),
				Batch:    idx + 1,
				From:     from,
				To:       from + len(batch) - 1,
				Err:      err,
			}
		}
		responses[idx] = resp
		report(idx)
		return nil
	}

	if f.Concurrency <= 1 {
		for i := range batches {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := run(ctx, i); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(f.Concurrency)
		for i := range batches {
			i := i
			g.Go(func() error { return run(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	out := make(map[string]model.PriceSeries, len(symbols))
	for i, batch := range batches {
		for _, sym := range batch {
			bars, ok := responses[i][sym]
			if !ok || len(bars) == 0 {
				continue
			}
			series := model.PriceSeries{Symbol: sym, Bars: normalize(bars)}
			out[sym] = series
			if f.Sink != nil {
				if err := f.Sink.RecordBars(sym, series.Bars); err != nil {
					logger.Warn("record bars for %s: %v", sym, err)
				}
			}
		}
	}
	logger.Info("fetched %d/%d series in %d batches from %s", len(out), len(symbols), len(batches), f.Provider.Name())
	return out, nil
}

// normalize sorts bars by time and keeps the last bar of each calendar day.
func normalize(bars []model.OHLCV) []model.OHLCV {
	sorted := make([]model.OHLCV, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := sorted[:0]
	for _, b := range sorted {
		if n := len(out); n > 0 && sameDay(out[n-1].Time, b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
