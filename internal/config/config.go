package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"StockRadar/internal/strategy"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Universe struct {
		Preset string `yaml:"preset"`
		File   string `yaml:"file"`
	} `yaml:"universe"`
	DataSource struct {
		Provider          string        `yaml:"provider" validate:"oneof=yahoo rest sqlite"`
		BaseURL           string        `yaml:"base_url" validate:"required_if=Provider rest,omitempty,url"`
		APIKey            string        `yaml:"api_key"`
		BatchSize         int           `yaml:"batch_size" validate:"gt=0"`
		LookbackDays      int           `yaml:"lookback_days" validate:"gte=200"`
		Concurrency       int           `yaml:"concurrency" validate:"gte=1,lte=16"`
		RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gte=0"`
		Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
	} `yaml:"data_source"`
	Strategy struct {
		BuyRSI   float64 `yaml:"buy_rsi" validate:"gt=0,lt=100"`
		WatchRSI float64 `yaml:"watch_rsi" validate:"gt=0,lt=100"`
		SellRSI  float64 `yaml:"sell_rsi" validate:"gt=0,lt=100"`
	} `yaml:"strategy"`
	Scan struct {
		Workers int `yaml:"workers" validate:"gte=1,lte=64"`
	} `yaml:"scan"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron" validate:"required"`
	} `yaml:"schedule"`
	Telegram struct {
		Enabled  bool   `yaml:"enabled"`
		BotToken string `yaml:"bot_token" validate:"required_if=Enabled true"`
		ChatID   string `yaml:"chat_id" validate:"required_if=Enabled true,omitempty,numeric"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Export struct {
		XLSXDir string `yaml:"xlsx_dir"`
	} `yaml:"export"`
	Logging struct {
		Level  string `yaml:"level" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" validate:"oneof=text plain"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"RADAR_UNIVERSE_PRESET": &c.Universe.Preset,
		"RADAR_UNIVERSE_FILE":   &c.Universe.File,
		"RADAR_PROVIDER":        &c.DataSource.Provider,
		"RADAR_BASE_URL":        &c.DataSource.BaseURL,
		"RADAR_API_KEY":         &c.DataSource.APIKey,
		"RADAR_DAILY_CRON":      &c.Schedule.DailyCron,
		"RADAR_SQLITE_PATH":     &c.Database.SQLitePath,
		"RADAR_METRICS_ADDR":    &c.Metrics.Addr,
		"RADAR_XLSX_DIR":        &c.Export.XLSXDir,
		"RADAR_LOG_LEVEL":       &c.Logging.Level,
		"TELEGRAM_BOT_TOKEN":    &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":      &c.Telegram.ChatID,
		"HTTPS_PROXY":           &c.Proxy,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"RADAR_BATCH_SIZE":    &c.DataSource.BatchSize,
		"RADAR_LOOKBACK_DAYS": &c.DataSource.LookbackDays,
		"RADAR_CONCURRENCY":   &c.DataSource.Concurrency,
		"RADAR_WORKERS":       &c.Scan.Workers,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	if v := os.Getenv("RADAR_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("RADAR_TIMEOUT: %w", err)
		}
		c.DataSource.Timeout = d
	}
	if v := os.Getenv("TELEGRAM_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TELEGRAM_ENABLED: %w", err)
		}
		c.Telegram.Enabled = b
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Universe.Preset == "" && c.Universe.File == "" {
		c.Universe.Preset = "tw150"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.BatchSize == 0 {
		c.DataSource.BatchSize = 50
	}
	if c.DataSource.LookbackDays == 0 {
		c.DataSource.LookbackDays = 400
	}
	if c.DataSource.Concurrency == 0 {
		c.DataSource.Concurrency = 1
	}
	if c.DataSource.RequestsPerSecond == 0 {
		c.DataSource.RequestsPerSecond = 2
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.Strategy.BuyRSI == 0 {
		c.Strategy.BuyRSI = 30
	}
	if c.Strategy.WatchRSI == 0 {
		c.Strategy.WatchRSI = 40
	}
	if c.Strategy.SellRSI == 0 {
		c.Strategy.SellRSI = 70
	}
	if c.Scan.Workers == 0 {
		c.Scan.Workers = 1
	}
	if c.Schedule.DailyCron == "" {
		// 14:00 Taipei on weekdays, after the close
		c.Schedule.DailyCron = "0 0 14 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stock_radar.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks field constraints and the relations between fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config %s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Universe.Preset != "" && c.Universe.File != "" {
		return fmt.Errorf("universe.preset and universe.file are mutually exclusive")
	}
	if err := c.Rules().Validate(); err != nil {
		return fmt.Errorf("invalid strategy: %w", err)
	}
	if c.DataSource.Provider == "sqlite" && c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required for the sqlite provider")
	}
	return nil
}

// Rules returns the classification thresholds.
func (c *Config) Rules() strategy.Rules {
	return strategy.Rules{
		BuyRSI:   c.Strategy.BuyRSI,
		WatchRSI: c.Strategy.WatchRSI,
		SellRSI:  c.Strategy.SellRSI,
	}
}
