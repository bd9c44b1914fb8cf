package config

import (
	"CryptoModelBot/internal/services/evaluation"
	"CryptoModelBot/internal/services/strategy"
)

type Config struct {
	GitHub     GitHubConfig     `yaml:"github"`
	Data       DataConfig       `yaml:"data"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Strategy   strategy.Params  `yaml:"strategy"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Exchange   ExchangeConfig   `yaml:"exchange"`
	Database   DatabaseConfig   `yaml:"database"`
	Storage    StorageConfig    `yaml:"storage"`
	Server     ServerConfig     `yaml:"server"`
	LogLevel   string           `yaml:"log_level"`
	LogPretty  bool             `yaml:"log_pretty"`

	warnings []string
}

type GitHubConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
	Query   string `yaml:"query"`
	PerPage int    `yaml:"per_page"`
	Sort    string `yaml:"sort"`
	Order   string `yaml:"order"`
}

// DataConfig selects the price history used for backtests.
type DataConfig struct {
	Symbol        string `yaml:"symbol"`
	Interval      string `yaml:"interval"`
	LookbackYears int    `yaml:"lookback_years"`
}

type EvaluationConfig struct {
	Thresholds   evaluation.Thresholds `yaml:"thresholds"`
	RiskFreeRate float64               `yaml:"risk_free_rate"`
	Workers      int                   `yaml:"workers"`
}

// SchedulerConfig is the daily run time in UTC.
type SchedulerConfig struct {
	Hour   int `yaml:"hour"`
	Minute int `yaml:"minute"`
}

type ExchangeConfig struct {
	BaseURL       string  `yaml:"base_url"`
	APIKey        string  `yaml:"api_key"`
	SecretKey     string  `yaml:"secret_key"`
	TradeSymbol   string  `yaml:"trade_symbol"`
	TradeQuantity float64 `yaml:"trade_quantity"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"db_name"`
}

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}
