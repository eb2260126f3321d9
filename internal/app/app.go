// Package app wires configuration, storage, clients, and services into a
// single runnable application core.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/omercanyy/investrack/internal/analytics"
	"github.com/omercanyy/investrack/internal/cache"
	"github.com/omercanyy/investrack/internal/clients/schwab"
	"github.com/omercanyy/investrack/internal/common"
	"github.com/omercanyy/investrack/internal/interfaces"
	"github.com/omercanyy/investrack/internal/services/lots"
	"github.com/omercanyy/investrack/internal/storage"
)

// App holds all initialized services, clients, and storage.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	MarketClient     interfaces.MarketDataClient
	LotService       interfaces.LotService
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

// NewApp initializes storage, the Schwab client, and all services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Load configuration - check provided path, INVESTRACK_CONFIG, then
	// binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("INVESTRACK_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "investrack.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/investrack.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths to the binary directory
	if config.Storage.Lots.Path != "" && !filepath.IsAbs(config.Storage.Lots.Path) {
		config.Storage.Lots.Path = filepath.Join(binDir, config.Storage.Lots.Path)
	}
	if config.Storage.Internal.Path != "" && !filepath.IsAbs(config.Storage.Internal.Path) {
		config.Storage.Internal.Path = filepath.Join(binDir, config.Storage.Internal.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if _, err := common.ResolveAccessToken(); err != nil {
		logger.Warn().Msg("Schwab access token not configured - market data will be unavailable")
	}

	marketClient := schwab.NewClient(schwab.EnvTokenSource{},
		schwab.WithLogger(logger),
		schwab.WithBaseURL(config.Clients.Schwab.BaseURL),
		schwab.WithRateLimit(config.Clients.Schwab.RateLimit),
		schwab.WithTimeout(config.Clients.Schwab.GetTimeout()),
	)

	historyCache := cache.NewHistoryCache(config.Clients.Schwab.GetHistoryCacheTTL())

	lotService := lots.NewService(storageManager, logger)
	analyticsService := analytics.NewService(storageManager, marketClient, historyCache, logger,
		analytics.WithBetaOverrides(config.BetaOverrides),
		analytics.WithBenchmarks(config.Benchmarks.Primary, config.Benchmarks.Secondary),
	)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		MarketClient:     marketClient,
		LotService:       lotService,
		AnalyticsService: analyticsService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: cancel scheduler, close storage.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}

// StartRefreshScheduler launches the background market-data refresh goroutine.
func (a *App) StartRefreshScheduler() {
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	a.schedulerCancel = schedulerCancel
	go startRefreshScheduler(schedulerCtx, a.AnalyticsService, a.Logger, a.Config.Benchmarks.GetRefreshInterval())
}
