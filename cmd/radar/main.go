package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"StockRadar/internal/collector"
	"StockRadar/internal/config"
	"StockRadar/internal/logger"
	"StockRadar/internal/metrics"
	"StockRadar/internal/model"
	"StockRadar/internal/notifier"
	"StockRadar/internal/recorder"
	"StockRadar/internal/scanner"
	"StockRadar/internal/scheduler"
	"StockRadar/internal/universe"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to the YAML config")
	once := flag.Bool("once", false, "run one scan, print the result and exit")
	flag.Parse()

	_ = godotenv.Load()
	if v := os.Getenv("CONFIG_PATH"); v != "" && !isFlagSet("config") {
		*cfgPath = v
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation: %v", err)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("StockRadar starting...")

	uni, err := loadUniverse(cfg)
	if err != nil {
		logger.Fatal("load universe: %v", err)
	}
	logger.Info("universe: %d symbols", uni.Len())

	// Bar cache. The sqlite provider replays it, the others write to it.
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	var cache *recorder.SQLiteRecorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			if cfg.DataSource.Provider == "sqlite" {
				logger.Fatal("open bar cache: %v", err)
			}
			logger.Warn("init sqlite bar cache failed, using noop: %v", err)
		} else {
			rec, cache = sr, sr
		}
	}
	defer rec.Close()

	var provider collector.Provider
	switch cfg.DataSource.Provider {
	case "rest":
		provider = collector.NewRESTProvider(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.Timeout)
	case "sqlite":
		provider = cache
	default:
		provider = collector.NewYahooProvider(cfg.Proxy, cfg.DataSource.Timeout, cfg.DataSource.RequestsPerSecond)
	}
	logger.Info("data source: %s", provider.Name())

	fetcher := collector.NewFetcher(provider, collector.FetchConfig{
		BatchSize:    cfg.DataSource.BatchSize,
		LookbackDays: cfg.DataSource.LookbackDays,
		Concurrency:  cfg.DataSource.Concurrency,
	})
	if cfg.DataSource.Provider != "sqlite" {
		fetcher.Sink = rec
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sc := scanner.New(uni, fetcher)
	sc.Rules = cfg.Rules()
	sc.Workers = cfg.Scan.Workers
	sc.Metrics = metrics.New(reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *once {
		report, err := sc.Scan(ctx, func(p scanner.Progress) {
			logger.Info("[%3.0f%%] %s", p.Fraction()*100, p.Message)
		})
		if err != nil {
			logger.Error("scan failed: %v", err)
			os.Exit(1)
		}
		printReport(os.Stdout, report)
		return
	}

	var srv *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server: %v", err)
			}
		}()
		logger.Info("metrics listening on %s", cfg.Metrics.Addr)
	}

	var sender scheduler.Sender
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.Enabled {
		tn, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err != nil {
			logger.Warn("telegram disabled: %v", err)
		} else {
			sender = tn
		}
	}

	sched := scheduler.NewScheduler(ctx, sc, sender, cfg.Export.XLSXDir)
	if err := sched.RegisterDaily(cfg.Schedule.DailyCron); err != nil {
		logger.Fatal("register cron tasks: %v", err)
	}
	sched.Start()

	if tn != nil {
		go tn.ListenForCommands(ctx, sched.HandleCommand)
		logger.Info("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, scanning now")
		go sched.RunNow()
	}

	logger.Info("StockRadar is running (%s). Press Ctrl+C to stop.", cfg.Schedule.DailyCron)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping...")
	cancel()
	sched.Stop()
	if srv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}
	logger.Info("StockRadar stopped")
}

func loadUniverse(cfg *config.Config) (*universe.Universe, error) {
	if cfg.Universe.File != "" {
		return universe.LoadFile(cfg.Universe.File)
	}
	return universe.Preset(cfg.Universe.Preset)
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func printReport(w io.Writer, r *model.ScanReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "scan %s  %s  symbols=%d skipped=%d\n\n",
		r.ID, r.StartedAt.Format("2006-01-02 15:04"), len(r.Outcomes), len(r.Skipped()))

	fmt.Fprintln(tw, "BUY\tNAME\tDATE\tCLOSE\tRSI\tMA200\tDEV\tSTATUS")
	for _, c := range r.Result.Buy {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\t%.2f\t%.1f%%\t%s\n", universe.ShortCode(c.Symbol), c.Name,
			c.Date.Format("2006-01-02"), c.Close, notifier.RSIBadge(c), c.MA200, c.Deviation, notifier.StatusLabel(c.Signal))
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "SELL\tNAME\tDATE\tCLOSE\tRSI\tMA200\tSTATUS")
	for _, c := range r.Result.Sell {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\t%.2f\t%s\n", universe.ShortCode(c.Symbol), c.Name,
			c.Date.Format("2006-01-02"), c.Close, notifier.RSIBadge(c), c.MA200, notifier.StatusLabel(c.Signal))
	}
	tw.Flush()
}
