// Package metrics exposes Prometheus collectors for scans.
package metrics

import (
	"time"

	"StockRadar/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the scan collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	ScansTotal     *prometheus.CounterVec
	ScanDuration   prometheus.Histogram
	BatchesTotal   prometheus.Counter
	SymbolsTotal   *prometheus.CounterVec
	SignalsTotal   *prometheus.CounterVec
	LastScanUnixTS prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "radar_scans_total",
				Help: "Scans run, by result",
			},
			[]string{"result"},
		),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "radar_scan_duration_seconds",
			Help:    "Wall time of a full scan",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		BatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "radar_fetch_batches_total",
			Help: "Provider batches fetched successfully",
		}),
		SymbolsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "radar_symbols_total",
				Help: "Symbols processed, by outcome status and skip reason",
			},
			[]string{"status", "reason"},
		),
		SignalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "radar_signals_total",
				Help: "Result rows emitted, by signal",
			},
			[]string{"signal"},
		),
		LastScanUnixTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "radar_last_scan_timestamp_seconds",
			Help: "Completion time of the last successful scan",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.ScansTotal, m.ScanDuration, m.BatchesTotal, m.SymbolsTotal, m.SignalsTotal, m.LastScanUnixTS)
	}
	return m
}

// ObserveBatch counts a fetched batch.
func (m *Metrics) ObserveBatch() {
	if m == nil {
		return
	}
	m.BatchesTotal.Inc()
}

// ObserveFailure records a scan aborted by an error.
func (m *Metrics) ObserveFailure(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ScansTotal.WithLabelValues("error").Inc()
	m.ScanDuration.Observe(elapsed.Seconds())
}

// ObserveReport records a completed scan.
func (m *Metrics) ObserveReport(r *model.ScanReport) {
	if m == nil || r == nil {
		return
	}
	m.ScansTotal.WithLabelValues("ok").Inc()
	m.ScanDuration.Observe(r.FinishedAt.Sub(r.StartedAt).Seconds())
	m.LastScanUnixTS.Set(float64(r.FinishedAt.Unix()))
	for _, o := range r.Outcomes {
		m.SymbolsTotal.WithLabelValues(string(o.Status), string(o.Reason)).Inc()
	}
	for _, c := range r.Result.Buy {
		m.SignalsTotal.WithLabelValues(c.Signal.String()).Inc()
	}
	for _, c := range r.Result.Sell {
		m.SignalsTotal.WithLabelValues(c.Signal.String()).Inc()
	}
}
