// Package common provides shared utilities for Folio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folio
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Client      ClientConfig    `toml:"client"`
	Cache       CacheConfig     `toml:"cache"`
	Refresh     RefreshConfig   `toml:"refresh"`
	Portfolio   PortfolioConfig `toml:"portfolio"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig selects and configures the durable key-value backend.
type StorageConfig struct {
	Backend string        `toml:"backend"` // "file" (default) or "surrealdb"
	File    FileConfig    `toml:"file"`
	Surreal SurrealConfig `toml:"surrealdb"`
}

// FileConfig holds file-backed store configuration.
type FileConfig struct {
	Path string `toml:"path"`
}

// SurrealConfig holds SurrealDB connection configuration.
type SurrealConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// ClientConfig holds market-data API client configuration
type ClientConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *ClientConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// CacheConfig holds price cache configuration
type CacheConfig struct {
	TTL string `toml:"ttl"`
}

// GetTTL parses and returns the cache TTL. Defaults to one hour.
func (c *CacheConfig) GetTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return time.Hour
	}
	return d
}

// RefreshConfig holds background price refresh configuration
type RefreshConfig struct {
	Enabled  bool   `toml:"enabled"`
	Interval string `toml:"interval"`
}

// GetInterval parses and returns the refresh interval. Defaults to 5 minutes.
func (c *RefreshConfig) GetInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// PortfolioConfig holds the static holdings definition and analytics inputs.
type PortfolioConfig struct {
	HoldingsFile   string             `toml:"holdings_file"` // optional JSON import file; overrides inline holdings
	Holdings       []HoldingConfig    `toml:"holdings"`
	RiskFreeRate   float64            `toml:"risk_free_rate"`   // annual, as a fraction (e.g. 0.04)
	FallbackTable  map[string]float64 `toml:"fallback_prices"`  // last-resort symbol -> price
	PeriodsPerYear float64            `toml:"periods_per_year"` // sampling frequency for annualization; 0 = infer
}

// HoldingConfig describes a single configured position.
type HoldingConfig struct {
	Symbol               string  `toml:"symbol"`
	Name                 string  `toml:"name"`
	Quantity             float64 `toml:"quantity"`
	AveragePrice         float64 `toml:"average_price"`
	Currency             string  `toml:"currency"`
	AnnualDividendIncome float64 `toml:"annual_dividend_income"`
	DividendYield        float64 `toml:"dividend_yield"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend: "file",
			File:    FileConfig{Path: "data"},
			Surreal: SurrealConfig{
				Address:   "ws://localhost:8000",
				Namespace: "folio",
				Database:  "folio",
			},
		},
		Client: ClientConfig{
			BaseURL:   "https://api.folio.dev/market",
			RateLimit: 10,
			Timeout:   "30s",
		},
		Cache: CacheConfig{
			TTL: "1h",
		},
		Refresh: RefreshConfig{
			Enabled:  true,
			Interval: "5m",
		},
		Portfolio: PortfolioConfig{
			RiskFreeRate: 0.04,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("FOLIO_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}

	if path := os.Getenv("FOLIO_DATA_PATH"); path != "" {
		config.Storage.File.Path = path
	}

	if v := os.Getenv("FOLIO_MARKET_API_KEY"); v != "" {
		config.Client.APIKey = v
	}

	if v := os.Getenv("FOLIO_MARKET_BASE_URL"); v != "" {
		config.Client.BaseURL = v
	}

	if v := os.Getenv("FOLIO_SURREAL_ADDRESS"); v != "" {
		config.Storage.Surreal.Address = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
