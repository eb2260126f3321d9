// Package common provides shared utilities for Investrack
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Investrack
type Config struct {
	Environment string           `toml:"environment"`
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Clients     ClientsConfig    `toml:"clients"`
	Benchmarks  BenchmarksConfig `toml:"benchmarks"`
	// BetaOverrides maps tickers to betas used when the market-data feed
	// returns no beta (or 0) for that ticker.
	BetaOverrides map[string]float64 `toml:"beta_overrides"`
	Logging       LoggingConfig      `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds paths for the two storage areas.
type StorageConfig struct {
	Lots     AreaConfig `toml:"lots"`     // Lot/ClosedLot + label documents (BadgerHold)
	Internal AreaConfig `toml:"internal"` // settings + cached market data (BadgerHold)
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Schwab SchwabConfig `toml:"schwab"`
}

// SchwabConfig holds Schwab market-data API configuration
type SchwabConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
	// HistoryCacheTTL bounds how long fetched benchmark candle series are
	// reused before being re-fetched.
	HistoryCacheTTL string `toml:"history_cache_ttl"`
}

// GetTimeout parses and returns the timeout duration
func (c *SchwabConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetHistoryCacheTTL parses and returns the history cache TTL.
func (c *SchwabConfig) GetHistoryCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.HistoryCacheTTL)
	if err != nil {
		return 12 * time.Hour
	}
	return d
}

// BenchmarksConfig holds benchmark comparison configuration.
type BenchmarksConfig struct {
	Primary   string `toml:"primary"`   // benchmark used for PME alpha (default SPY)
	Secondary string `toml:"secondary"` // second XIRR comparison series (default GLD)
	// RefreshInterval is how often the scheduler refreshes market data and
	// recomputes the snapshot.
	RefreshInterval string `toml:"refresh_interval"`
}

// GetRefreshInterval parses and returns the market refresh interval.
func (c *BenchmarksConfig) GetRefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return 5 * time.Minute
	}
	return d
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
			Lots:     AreaConfig{Path: "data/lots"},
			Internal: AreaConfig{Path: "data/internal"},
		},
		Clients: ClientsConfig{
			Schwab: SchwabConfig{
				BaseURL:         "https://api.schwabapi.com",
				RateLimit:       10,
				Timeout:         "30s",
				HistoryCacheTTL: "12h",
			},
		},
		Benchmarks: BenchmarksConfig{
			Primary:         "SPY",
			Secondary:       "GLD",
			RefreshInterval: "5m",
		},
		BetaOverrides: map[string]float64{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
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
	if env := os.Getenv("INVESTRACK_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("INVESTRACK_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("INVESTRACK_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("INVESTRACK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("INVESTRACK_DATA_PATH"); path != "" {
		config.Storage.Lots.Path = path + "/lots"
		config.Storage.Internal.Path = path + "/internal"
	}

	if url := os.Getenv("INVESTRACK_SCHWAB_BASE_URL"); url != "" {
		config.Clients.Schwab.BaseURL = url
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAccessToken resolves the Schwab API bearer token from the
// environment. Token acquisition and refresh are owned by an external
// OAuth collaborator; the server only consumes the result.
func ResolveAccessToken() (string, error) {
	for _, name := range []string{"SCHWAB_ACCESS_TOKEN", "INVESTRACK_SCHWAB_TOKEN"} {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("schwab access token not found in environment")
}
