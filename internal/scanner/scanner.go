// Package scanner drives a full market scan: fetch, indicators, classification.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"StockRadar/internal/calculator"
	"StockRadar/internal/collector"
	"StockRadar/internal/logger"
	"StockRadar/internal/metrics"
	"StockRadar/internal/model"
	"StockRadar/internal/strategy"
	"StockRadar/internal/universe"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Stage names the phase a progress update belongs to.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageAnalyze Stage = "analyze"
	StageDone    Stage = "done"
)

// Progress is delivered to the caller while a scan runs. Processed never
// decreases within one scan.
type Progress struct {
	Stage     Stage
	Processed int
	Total     int
	Message   string
}

// Fraction returns Processed/Total in [0,1].
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Processed) / float64(p.Total)
}

// Scanner runs the MA200 + RSI scan over a universe.
type Scanner struct {
	Universe *universe.Universe
	Fetcher  *collector.Fetcher
	Rules    strategy.Rules
	Workers  int // >1 analyzes symbols in parallel
	Metrics  *metrics.Metrics
}

// New creates a Scanner with the default rules.
func New(u *universe.Universe, f *collector.Fetcher) *Scanner {
	return &Scanner{Universe: u, Fetcher: f, Rules: strategy.DefaultRules(), Workers: 1}
}

// scan holds the mutable state of one Scan call.
type scan struct {
	mu         sync.Mutex
	total      int
	processed  int
	onProgress func(Progress)
}

func (s *scan) emit(stage Stage, msg string) {
	if s.onProgress == nil {
		return
	}
	s.onProgress(Progress{Stage: stage, Processed: s.processed, Total: s.total, Message: msg})
}

func (s *scan) advance(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
	s.emit(StageAnalyze, symbol)
}

type analysis struct {
	outcome model.Outcome
	verdict strategy.Verdict
}

// Scan fetches every symbol of the universe and classifies it. A provider
// failure aborts the scan; every other per-symbol problem only excludes
// that symbol and is recorded in the report outcomes.
func (sc *Scanner) Scan(ctx context.Context, onProgress func(Progress)) (*model.ScanReport, error) {
	started := time.Now()
	symbols := sc.Universe.Symbols()
	st := &scan{total: len(symbols), onProgress: onProgress}

	logger.Info("scan started: %d symbols", len(symbols))
	st.emit(StageFetch, fmt.Sprintf("downloading %d symbols from %s", len(symbols), sc.Fetcher.Provider.Name()))

	series, err := sc.Fetcher.Fetch(ctx, symbols, func(bp collector.BatchProgress) {
		sc.Metrics.ObserveBatch()
		st.emit(StageFetch, bp.String())
	})
	if err != nil {
		sc.Metrics.ObserveFailure(time.Since(started))
		logger.Error("scan aborted: %v", err)
		return nil, fmt.Errorf("scan: %w", err)
	}
	st.emit(StageAnalyze, "download complete, computing indicators")

	results := make([]analysis, len(symbols))
	if sc.Workers <= 1 {
		for i, sym := range symbols {
			s, ok := series[sym]
			results[i] = sc.analyze(sym, s, ok)
			st.advance(sym)
		}
	} else {
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(sc.Workers)
		for i, sym := range symbols {
			i, sym := i, sym
			g.Go(func() error {
				s, ok := series[sym]
				results[i] = sc.analyze(sym, s, ok)
				st.advance(sym)
				return nil
			})
		}
		_ = g.Wait()
	}

	report := &model.ScanReport{
		ID:        uuid.NewString(),
		StartedAt: started,
		Outcomes:  make([]model.Outcome, 0, len(symbols)),
	}
	for _, a := range results {
		report.Outcomes = append(report.Outcomes, a.outcome)
		if a.verdict.Buy != nil {
			report.Result.Buy = append(report.Result.Buy, *a.verdict.Buy)
		}
		if a.verdict.Sell != nil {
			report.Result.Sell = append(report.Result.Sell, *a.verdict.Sell)
		}
	}
	report.FinishedAt = time.Now()

	st.emit(StageDone, "scan complete")
	sc.Metrics.ObserveReport(report)
	logger.Info("scan %s finished in %v: %d buy, %d sell, %d skipped",
		report.ID, report.FinishedAt.Sub(started).Round(time.Millisecond),
		len(report.Result.Buy), len(report.Result.Sell), len(report.Skipped()))
	return report, nil
}

// analyze turns one series into an outcome. It never panics.
func (sc *Scanner) analyze(symbol string, series model.PriceSeries, found bool) (a analysis) {
	defer func() {
		if r := recover(); r != nil {
			a = skipped(symbol, model.SkipFault, fmt.Sprintf("panic: %v", r))
		}
	}()

	if !found {
		return skipped(symbol, model.SkipMissing, "no data returned")
	}
	snap, err := calculator.Snapshot(series)
	switch {
	case errors.Is(err, calculator.ErrInsufficientHistory):
		return skipped(symbol, model.SkipInsufficientHistory, err.Error())
	case errors.Is(err, calculator.ErrIndeterminateRSI):
		return skipped(symbol, model.SkipIndeterminate, err.Error())
	case err != nil:
		return skipped(symbol, model.SkipFault, err.Error())
	}

	v := strategy.Classify(snap, sc.Universe.Name(symbol), sc.Rules)
	a.verdict = v
	a.outcome = model.Outcome{Symbol: symbol, Status: model.StatusNoSignal}
	if !v.Empty() {
		a.outcome.Status = model.StatusClassified
		a.outcome.Signals = v.Signals()
	}
	return a
}

func skipped(symbol string, reason model.SkipReason, detail string) analysis {
	logger.Debug("skip %s: %s (%s)", symbol, reason, detail)
	return analysis{outcome: model.Outcome{
		Symbol: symbol,
		Status: model.StatusSkipped,
		Reason: reason,
		Detail: detail,
	}}
}
