package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"CryptoModelBot/internal/services/evaluation"
	"CryptoModelBot/internal/services/strategy"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		GitHub: GitHubConfig{
			BaseURL: "https://api.github.com",
			Query:   "crypto AI trading",
			PerPage: 10,
			Sort:    "updated",
			Order:   "desc",
		},
		Data: DataConfig{
			Symbol:        "BTCUSDT",
			Interval:      "1d",
			LookbackYears: 3,
		},
		Evaluation: EvaluationConfig{
			Thresholds: evaluation.Thresholds{
				MinAnnualReturn: 0.15,
				MinSharpeRatio:  1.0,
				MaxDrawdown:     0.35,
			},
			RiskFreeRate: 0,
			Workers:      4,
		},
		Strategy:  strategy.DefaultParams(),
		Scheduler: SchedulerConfig{Hour: 6, Minute: 0},
		Exchange: ExchangeConfig{
			TradeSymbol:   "BTCUSDT",
			TradeQuantity: 0.001,
		},
		Database: DatabaseConfig{
			Host:   "localhost",
			Port:   5432,
			DBName: "cryptomodelbot",
		},
		Storage: StorageConfig{
			Backend: StorageFile,
			Path:    "data/models.json",
		},
		Server:   ServerConfig{Addr: ":8080"},
		LogLevel: "info",
	}
}

// Load layers defaults, the YAML file named by CONFIG_FILE and the
// environment (including a .env file when present).
func Load() (*Config, error) {
	var warnings []string
	if err := godotenv.Load(); err != nil {
		warnings = append(warnings, fmt.Sprintf("no .env file loaded: %v", err))
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)

	cfg.warnings = warnings
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s not found: %w", path, err)
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.GitHub.BaseURL, "GITHUB_API_URL")
	setString(&cfg.GitHub.Token, "GITHUB_TOKEN")
	setString(&cfg.GitHub.Query, "GITHUB_QUERY")
	setInt(&cfg.GitHub.PerPage, "GITHUB_PER_PAGE")

	setString(&cfg.Data.Symbol, "DATA_SYMBOL")
	setString(&cfg.Data.Interval, "DATA_INTERVAL")
	setInt(&cfg.Data.LookbackYears, "DATA_LOOKBACK_YEARS")

	setFloat(&cfg.Evaluation.Thresholds.MinAnnualReturn, "MIN_ANNUAL_RETURN")
	setFloat(&cfg.Evaluation.Thresholds.MinSharpeRatio, "MIN_SHARPE_RATIO")
	setFloat(&cfg.Evaluation.Thresholds.MaxDrawdown, "MAX_DRAWDOWN")
	setFloat(&cfg.Evaluation.RiskFreeRate, "RISK_FREE_RATE")
	setInt(&cfg.Evaluation.Workers, "EVALUATION_WORKERS")

	setInt(&cfg.Scheduler.Hour, "RUN_HOUR_UTC")
	setInt(&cfg.Scheduler.Minute, "RUN_MINUTE_UTC")

	setString(&cfg.Exchange.BaseURL, "BINANCE_BASE_URL")
	setString(&cfg.Exchange.APIKey, "BINANCE_API_KEY")
	setString(&cfg.Exchange.SecretKey, "BINANCE_SECRET_KEY")
	setString(&cfg.Exchange.TradeSymbol, "TRADE_SYMBOL")
	setFloat(&cfg.Exchange.TradeQuantity, "TRADE_QUANTITY")

	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DBName, "DB_NAME")

	setString(&cfg.Storage.Backend, "MODEL_STORE")
	setString(&cfg.Storage.Path, "MODEL_STORE_PATH")

	setString(&cfg.Server.Addr, "HTTP_ADDR")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		cfg.LogPretty, _ = strconv.ParseBool(v)
	}
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.DBName)
}

// Validate logs suspicious settings. It never rejects a configuration.
func (c *Config) Validate(logger zerolog.Logger) {
	for _, w := range c.warnings {
		logger.Warn().Msg(w)
	}

	t := c.Evaluation.Thresholds
	if t.MaxDrawdown < 0 {
		logger.Warn().Float64("max_drawdown", t.MaxDrawdown).Msg("Negative drawdown bound rejects every candidate")
	}
	if c.Exchange.TradeQuantity <= 0 {
		logger.Warn().Float64("trade_quantity", c.Exchange.TradeQuantity).Msg("Trade quantity must be positive")
	}
	if c.Scheduler.Hour < 0 || c.Scheduler.Hour > 23 || c.Scheduler.Minute < 0 || c.Scheduler.Minute > 59 {
		logger.Warn().Int("hour", c.Scheduler.Hour).Int("minute", c.Scheduler.Minute).Msg("Run time out of range")
	}
	if c.Strategy.FastWindow >= c.Strategy.SlowWindow {
		logger.Warn().Int("fast", c.Strategy.FastWindow).Int("slow", c.Strategy.SlowWindow).Msg("Fast SMA window is not shorter than slow window")
	}
	if c.Exchange.APIKey == "" || c.Exchange.SecretKey == "" {
		logger.Warn().Msg("Binance credentials not set, orders will be skipped")
	}
	switch strings.ToLower(c.Storage.Backend) {
	case StorageFile, StoragePostgres:
	default:
		logger.Warn().Str("backend", c.Storage.Backend).Msg("Unknown model store backend, using file")
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
