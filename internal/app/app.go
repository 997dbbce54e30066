// Package app wires configuration, storage, clients, and services into
// the shared application core used by cmd/folio-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/folioapp/folio/internal/clients/marketdata"
	"github.com/folioapp/folio/internal/common"
	"github.com/folioapp/folio/internal/holdings"
	"github.com/folioapp/folio/internal/interfaces"
	"github.com/folioapp/folio/internal/pricecache"
	"github.com/folioapp/folio/internal/services/analytics"
	"github.com/folioapp/folio/internal/services/indicator"
	"github.com/folioapp/folio/internal/services/price"
	"github.com/folioapp/folio/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Store            interfaces.KVStore
	Cache            *pricecache.Cache
	MarketClient     interfaces.QuoteClient
	Holdings         interfaces.HoldingsProvider
	PriceService     interfaces.PriceService
	IndicatorService interfaces.IndicatorService
	AnalyticsService interfaces.AnalyticsService
	StartupTime      time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services from configuration.
// configPath may be empty, in which case FOLIO_CONFIG and the binary
// directory are consulted.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.File.Path != "" && !filepath.IsAbs(config.Storage.File.Path) {
		config.Storage.File.Path = filepath.Join(binDir, config.Storage.File.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	store, err := storage.NewKVStore(logger, &config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	cache := pricecache.New(store, logger, pricecache.WithTTL(config.Cache.GetTTL()))

	var client interfaces.QuoteClient
	if config.Client.APIKey != "" {
		client = marketdata.NewClient(config.Client.APIKey,
			marketdata.WithBaseURL(config.Client.BaseURL),
			marketdata.WithRateLimit(config.Client.RateLimit),
			marketdata.WithTimeout(config.Client.GetTimeout()),
			marketdata.WithLogger(logger),
		)
	} else {
		logger.Warn().Msg("No market API key configured, live quotes disabled")
	}

	holdingsProvider := holdings.NewProvider(config.Portfolio, logger)

	priceService := price.NewService(client, cache, config.Portfolio.FallbackTable, logger)
	indicatorService := indicator.NewService(client, logger)
	analyticsService := analytics.NewService(
		holdingsProvider,
		priceService,
		analytics.NewHistory(store, logger),
		logger,
		analytics.WithRiskFreeRate(config.Portfolio.RiskFreeRate),
		analytics.WithAnnualPeriods(config.Portfolio.PeriodsPerYear),
	)

	a := &App{
		Config:           config,
		Logger:           logger,
		Store:            store,
		Cache:            cache,
		MarketClient:     client,
		Holdings:         holdingsProvider,
		PriceService:     priceService,
		IndicatorService: indicatorService,
		AnalyticsService: analyticsService,
		StartupTime:      startupStart,
	}

	logger.Info().
		Str("environment", config.Environment).
		Str("storage", config.Storage.Backend).
		Dur("startup", time.Since(startupStart)).
		Msg("Application initialized")
	return a, nil
}

// StartScheduler launches the background refresh loop when enabled.
func (a *App) StartScheduler(ctx context.Context) {
	if !a.Config.Refresh.Enabled {
		a.Logger.Info().Msg("Background refresh disabled")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	a.schedulerCancel = cancel

	interval := a.Config.Refresh.GetInterval()
	a.Logger.Info().Dur("interval", interval).Msg("Starting background refresh")
	go runScheduler(ctx, a.AnalyticsService, a.Cache, a.Logger, interval)
}

// Close stops the scheduler and releases storage.
func (a *App) Close() error {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
