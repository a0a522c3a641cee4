package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"StockRadar/internal/export"
	"StockRadar/internal/logger"
	"StockRadar/internal/model"
	"StockRadar/internal/notifier"
	"StockRadar/internal/scanner"

	"github.com/robfig/cron/v3"
)

// ErrScanRunning is returned when a scan is requested while one is active.
var ErrScanRunning = errors.New("scan already running")

// Scanner runs one market scan.
type Scanner interface {
	Scan(ctx context.Context, onProgress func(scanner.Progress)) (*model.ScanReport, error)
}

// Sender delivers a formatted message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages the cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Scanner   Scanner
	Notifier  Sender // nil disables notifications
	ExportDir string // empty disables xlsx export
	Ctx       context.Context

	running sync.Mutex
	mu      sync.Mutex
	last    *model.ScanReport
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sc Scanner, n Sender, exportDir string) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Scanner:   sc,
		Notifier:  n,
		ExportDir: exportDir,
		Ctx:       ctx,
	}
}

// RegisterDaily registers the daily market scan.
func (s *Scheduler) RegisterDaily(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyScan); err != nil {
		return fmt.Errorf("register daily scan: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info("scheduler stopped")
}

// Last returns the report of the latest successful scan.
func (s *Scheduler) Last() *model.ScanReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// RunNow runs a scan immediately, notifies and exports the result.
// Overlapping calls return ErrScanRunning.
func (s *Scheduler) RunNow() (*model.ScanReport, error) {
	if !s.running.TryLock() {
		return nil, ErrScanRunning
	}
	defer s.running.Unlock()

	logger.Info("running market scan")
	report, err := s.Scanner.Scan(s.Ctx, func(p scanner.Progress) {
		if p.Stage == scanner.StageFetch {
			logger.Info("%s", p.Message)
			return
		}
		logger.Debug("[%3.0f%%] %s", p.Fraction()*100, p.Message)
	})
	if err != nil {
		logger.Error("market scan: %v", err)
		s.trySend(notifier.FormatFailure(err))
		return nil, err
	}

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	s.trySend(notifier.FormatReport(report))
	if s.ExportDir != "" {
		path := filepath.Join(s.ExportDir, export.FileName(report))
		if err := export.WriteXLSX(report, path); err != nil {
			logger.Error("export xlsx: %v", err)
		} else {
			logger.Info("report exported to %s", path)
		}
	}
	return report, nil
}

func (s *Scheduler) dailyScan() {
	if _, err := s.RunNow(); errors.Is(err, ErrScanRunning) {
		logger.Warn("daily scan skipped: %v", err)
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/scan", "開始掃描":
		if _, err := s.RunNow(); errors.Is(err, ErrScanRunning) {
			return "⏳ 掃描進行中，請稍候。"
		}
		return ""
	case "/last", "最新結果":
		if r := s.Last(); r != nil {
			return notifier.FormatReport(r)
		}
		return "尚未完成任何掃描。"
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		logger.Error("send notification: %v", err)
	}
}
