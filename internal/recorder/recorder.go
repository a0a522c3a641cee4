package recorder

import "StockRadar/internal/model"

// Recorder caches downloaded daily bars.
type Recorder interface {
	RecordBars(symbol string, bars []model.OHLCV) error
	Close() error
}
