package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"StockRadar/internal/collector"
	"StockRadar/internal/metrics"
	"StockRadar/internal/model"
	"StockRadar/internal/universe"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// pullback rises 0.5/day for 245 sessions, then falls drop/day for 5.
func pullback(drop float64) []float64 {
	closes := make([]float64, 0, 250)
	p := 100.0
	for i := 0; i < 245; i++ {
		closes = append(closes, p)
		p += 0.5
	}
	p -= 0.5
	for i := 0; i < 5; i++ {
		p -= drop
		closes = append(closes, p)
	}
	return closes
}

// rally climbs 1/day with a 0.3 dip every fifth session.
func rally(n int) []float64 {
	closes := make([]float64, n)
	p := 100.0
	for i := range closes {
		if i%5 == 4 {
			p -= 0.3
		} else {
			p += 1
		}
		closes[i] = p
	}
	return closes
}

func flat(n int, v float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = v
	}
	return closes
}

func newScanner(series map[string][]float64, ids ...string) (*Scanner, *collector.StaticProvider) {
	data := make(map[string][]model.OHLCV, len(series))
	for sym, closes := range series {
		data[sym] = collector.GenerateBars(day0, closes)
	}
	p := collector.NewStaticProvider(data)
	f := collector.NewFetcher(p, collector.FetchConfig{BatchSize: 2})
	names := map[string]string{"2330.TW": "TSMC"}
	return New(universe.New(ids, names), f), p
}

func TestScan_Classification(t *testing.T) {
	sc, _ := newScanner(map[string][]float64{
		"2330.TW": pullback(4),
		"2317.TW": pullback(2),
		"2454.TW": rally(260),
		"2303.TW": rally(150),
		"1101.TW": flat(250, 42),
	}, "2330.TW", "2317.TW", "2454.TW", "2303.TW", "1101.TW", "9999.TW")

	report, err := sc.Scan(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 6)
	assert.NotEmpty(t, report.ID)

	require.Len(t, report.Result.Buy, 2)
	buy := report.Result.Buy[0]
	assert.Equal(t, "2330.TW", buy.Symbol)
	assert.Equal(t, "TSMC", buy.Name)
	assert.Equal(t, model.SignalStrongBuy, buy.Signal)
	assert.InDelta(t, 21.8, buy.RSI, 0.1)
	assert.Greater(t, buy.Deviation, 0.0)
	assert.Equal(t, model.SignalWatch, report.Result.Buy[1].Signal)
	assert.Equal(t, "2317.TW", report.Result.Buy[1].Name)

	require.Len(t, report.Result.Sell, 1)
	assert.Equal(t, "2454.TW", report.Result.Sell[0].Symbol)
	assert.Equal(t, model.SignalOverheated, report.Result.Sell[0].Signal)
	assert.Greater(t, report.Result.Sell[0].RSI, 70.0)

	assert.Equal(t, 1, report.CountBy(model.SkipInsufficientHistory))
	assert.Equal(t, 1, report.CountBy(model.SkipIndeterminate))
	assert.Equal(t, 1, report.CountBy(model.SkipMissing))

	o, ok := report.Outcome("2303.TW")
	require.True(t, ok)
	assert.Equal(t, model.StatusSkipped, o.Status)
	o, _ = report.Outcome("2330.TW")
	assert.Equal(t, model.StatusClassified, o.Status)
	assert.Equal(t, []model.Signal{model.SignalStrongBuy}, o.Signals)
}

func TestScan_NoSignalIsNotSkipped(t *testing.T) {
	// mild pullback: above MA200 with RSI near 69
	sc, _ := newScanner(map[string][]float64{"A": pullback(0.5)}, "A")
	report, err := sc.Scan(context.Background(), nil)
	require.NoError(t, err)
	o, ok := report.Outcome("A")
	require.True(t, ok)
	assert.Equal(t, model.StatusNoSignal, o.Status)
	assert.Equal(t, model.SkipNone, o.Reason)
	assert.True(t, report.Result.Empty())
}

func TestScan_OneBadSymbolDoesNotAffectOthers(t *testing.T) {
	bad := pullback(4)
	bad[120] = -1
	series := map[string][]float64{
		"A": pullback(4), "B": pullback(4), "C": bad, "D": pullback(4), "E": pullback(4),
	}
	sc, _ := newScanner(series, "A", "B", "C", "D", "E")

	report, err := sc.Scan(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, report.Result.Buy, 4)
	assert.Equal(t, 1, report.CountBy(model.SkipFault))
	o, _ := report.Outcome("C")
	assert.Equal(t, model.SkipFault, o.Reason)
	assert.NotEmpty(t, o.Detail)
}

func TestScan_ProviderFailureAborts(t *testing.T) {
	sc, p := newScanner(map[string][]float64{"A": pullback(4)}, "A", "B", "C")
	p.Err = errors.New("HTTP 503")
	p.FailOn = 2

	report, err := sc.Scan(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, collector.ErrProviderFailure)

	var pe *collector.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Batch)
}

func TestScan_Idempotent(t *testing.T) {
	series := map[string][]float64{"A": pullback(4), "B": rally(260), "C": pullback(2)}
	sc, _ := newScanner(series, "A", "B", "C")

	first, err := sc.Scan(context.Background(), nil)
	require.NoError(t, err)
	second, err := sc.Scan(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, first.Result, second.Result)
	assert.Equal(t, first.Outcomes, second.Outcomes)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestScan_ParallelMatchesSequential(t *testing.T) {
	series := map[string][]float64{}
	var ids []string
	for i, sym := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		ids = append(ids, sym)
		switch i % 4 {
		case 0:
			series[sym] = pullback(4)
		case 1:
			series[sym] = rally(260)
		case 2:
			series[sym] = pullback(2)
		case 3:
			series[sym] = rally(100)
		}
	}
	seq, _ := newScanner(series, ids...)
	par, _ := newScanner(series, ids...)
	par.Workers = 4
	par.Fetcher.Concurrency = 3

	a, err := seq.Scan(context.Background(), nil)
	require.NoError(t, err)
	b, err := par.Scan(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, a.Result, b.Result)
	assert.Equal(t, a.Outcomes, b.Outcomes)
}

func TestScan_ProgressIsMonotonic(t *testing.T) {
	series := map[string][]float64{"A": pullback(4), "B": rally(260), "C": pullback(2), "D": flat(250, 1)}
	for _, workers := range []int{1, 3} {
		sc, _ := newScanner(series, "A", "B", "C", "D", "E")
		sc.Workers = workers

		var mu sync.Mutex
		var updates []Progress
		_, err := sc.Scan(context.Background(), func(p Progress) {
			mu.Lock()
			updates = append(updates, p)
			mu.Unlock()
		})
		require.NoError(t, err)
		require.NotEmpty(t, updates)

		last := -1.0
		fetchMsgs := 0
		for _, u := range updates {
			f := u.Fraction()
			assert.GreaterOrEqual(t, f, last)
			assert.LessOrEqual(t, f, 1.0)
			last = f
			if u.Stage == StageFetch {
				fetchMsgs++
			}
		}
		final := updates[len(updates)-1]
		assert.Equal(t, StageDone, final.Stage)
		assert.Equal(t, 1.0, final.Fraction())
		// one start message plus one per batch of two
		assert.Equal(t, 4, fetchMsgs)
	}
}

func TestScan_CancelledContext(t *testing.T) {
	sc, _ := newScanner(map[string][]float64{"A": pullback(4)}, "A")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sc.Scan(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProgress_Fraction(t *testing.T) {
	assert.Equal(t, 0.0, Progress{}.Fraction())
	assert.Equal(t, 0.5, Progress{Processed: 2, Total: 4}.Fraction())
}

func TestScan_RecordsMetrics(t *testing.T) {
	sc, p := newScanner(map[string][]float64{"A": pullback(4), "B": rally(150)}, "A", "B", "C")
	sc.Metrics = metrics.New(prometheus.NewRegistry())

	_, err := sc.Scan(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(sc.Metrics.ScansTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(sc.Metrics.BatchesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(sc.Metrics.SignalsTotal.WithLabelValues("STRONG_BUY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sc.Metrics.SymbolsTotal.WithLabelValues("SKIPPED", "MISSING")))

	p.Err = errors.New("HTTP 429")
	_, err = sc.Scan(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(sc.Metrics.ScansTotal.WithLabelValues("error")))
}
