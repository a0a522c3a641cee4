package recorder

import "StockRadar/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordBars(_ string, _ []model.OHLCV) error { return nil }
func (n *NoopRecorder) Close() error                               { return nil }
