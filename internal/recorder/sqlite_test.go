package recorder

import (
	"context"
	"testing"
	"time"

	"StockRadar/internal/collector"
	"StockRadar/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Recorder           = (*SQLiteRecorder)(nil)
	_ Recorder           = (*NoopRecorder)(nil)
	_ collector.Provider = (*SQLiteRecorder)(nil)
	_ collector.Sink     = (*SQLiteRecorder)(nil)
)

func openMemory(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func day(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

func TestSQLiteRecorder_RecordAndFetch(t *testing.T) {
	r := openMemory(t)
	bars := collector.GenerateBars(day(1), []float64{10, 11, 12, 13})
	require.NoError(t, r.RecordBars("2330.TW", bars))

	got, err := r.FetchBars(context.Background(), []string{"2330.TW", "9999.TW"}, day(1), day(10))
	require.NoError(t, err)
	require.Contains(t, got, "2330.TW")
	assert.NotContains(t, got, "9999.TW")
	assert.Equal(t, bars, got["2330.TW"])
}

func TestSQLiteRecorder_UpsertReplacesSession(t *testing.T) {
	r := openMemory(t)
	require.NoError(t, r.RecordBars("A", collector.GenerateBars(day(1), []float64{10, 11})))
	require.NoError(t, r.RecordBars("A", collector.GenerateBars(day(2), []float64{20, 21})))

	got, err := r.FetchBars(context.Background(), []string{"A"}, day(1), day(10))
	require.NoError(t, err)
	closes := model.PriceSeries{Bars: got["A"]}.Closes()
	assert.Equal(t, []float64{10, 20, 21}, closes)
}

func TestSQLiteRecorder_WindowIsHalfOpen(t *testing.T) {
	r := openMemory(t)
	require.NoError(t, r.RecordBars("A", collector.GenerateBars(day(1), []float64{1, 2, 3, 4, 5})))

	got, err := r.FetchBars(context.Background(), []string{"A"}, day(2), day(4))
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, model.PriceSeries{Bars: got["A"]}.Closes())
}

func TestSQLiteRecorder_AsFetcherSinkAndReplay(t *testing.T) {
	r := openMemory(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	src := collector.NewStaticProvider(map[string][]model.OHLCV{
		"A": collector.GenerateBars(now.AddDate(0, 0, -30), []float64{1, 2, 3}),
	})

	live := collector.NewFetcher(src, collector.FetchConfig{})
	live.Sink = r
	live.Now = func() time.Time { return now }
	want, err := live.Fetch(context.Background(), []string{"A"}, nil)
	require.NoError(t, err)

	replay := collector.NewFetcher(r, collector.FetchConfig{})
	replay.Now = func() time.Time { return now }
	got, err := replay.Fetch(context.Background(), []string{"A", "B"}, nil)
	require.NoError(t, err)
	assert.Equal(t, want["A"], got["A"])
	assert.NotContains(t, got, "B")
}

func TestNoopRecorder(t *testing.T) {
	n := NewNoopRecorder()
	assert.NoError(t, n.RecordBars("A", nil))
	assert.NoError(t, n.Close())
}
