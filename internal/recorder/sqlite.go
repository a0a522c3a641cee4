package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"StockRadar/internal/logger"
	"StockRadar/internal/model"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// SQLiteRecorder keeps daily bars in a SQLite database. It doubles as a
// collector.Provider so a scan can be replayed from the cache offline.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite bar cache opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_bars (
			symbol     TEXT NOT NULL,
			date       TEXT NOT NULL,
			open       REAL,
			high       REAL,
			low        REAL,
			close      REAL,
			volume     REAL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bars_date ON price_bars(date)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordBars upserts the bars of one symbol. A later download of the same
// session replaces the cached row.
func (r *SQLiteRecorder) RecordBars(symbol string, bars []model.OHLCV) error {
	if len(bars) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO price_bars
		(symbol, date, open, high, low, close, volume, updated_at)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open=excluded.open, high=excluded.high, low=excluded.low,
			close=excluded.close, volume=excluded.volume, updated_at=excluded.updated_at`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, b := range bars {
		if _, err := stmt.Exec(symbol, b.Time.Format(dateLayout),
			b.Open, b.High, b.Low, b.Close, b.Volume, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert %s %s: %w", symbol, b.Time.Format(dateLayout), err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Name() string { return "sqlite" }

// FetchBars serves cached bars with start <= date < end. Symbols with no
// cached rows are absent from the result.
func (r *SQLiteRecorder) FetchBars(ctx context.Context, symbols []string, start, end time.Time) (map[string][]model.OHLCV, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string][]model.OHLCV, len(symbols))
	from, to := start.Format(dateLayout), end.Format(dateLayout)
	for _, sym := range symbols {
		bars, err := r.query(ctx, sym, from, to)
		if err != nil {
			return nil, err
		}
		if len(bars) > 0 {
			out[sym] = bars
		}
	}
	return out, nil
}

func (r *SQLiteRecorder) query(ctx context.Context, symbol, from, to string) ([]model.OHLCV, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date, open, high, low, close, volume
		FROM price_bars WHERE symbol = ? AND date >= ? AND date < ?
		ORDER BY date`, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", symbol, err)
	}
	defer rows.Close()

	var bars []model.OHLCV
	for rows.Next() {
		var (
			date string
			b    model.OHLCV
		)
		if err := rows.Scan(&date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan %s: %w", symbol, err)
		}
		t, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", date, err)
		}
		b.Time = t
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	logger.Info("closing sqlite bar cache")
	return r.db.Close()
}
