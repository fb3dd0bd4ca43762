// Package config loads the client configuration from the environment. A
// .env file in the working directory is read first when present, so local
// setups do not need exported variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every knob the market binary reads.
type Config struct {
	// APIURL is the backend REST root.
	APIURL string `env:"MARKET_API_URL" envDefault:"http://localhost:8000"`

	// WSURL is the websocket root. Empty means derived from APIURL by
	// swapping the scheme.
	WSURL string `env:"MARKET_WS_URL"`

	// CredentialsPath is the on-disk credential file. Empty means
	// ~/.market/credentials.json.
	CredentialsPath string `env:"MARKET_CREDENTIALS"`

	// RedisAddr, when set, switches credential storage from the file to a
	// shared Redis instance.
	RedisAddr string `env:"MARKET_REDIS_ADDR"`

	// Profile namespaces the Redis credential key.
	Profile string `env:"MARKET_PROFILE" envDefault:"default"`

	// MetricsAddr, when set, exposes Prometheus metrics on that address.
	MetricsAddr string `env:"MARKET_METRICS_ADDR"`

	// HTTPTimeout bounds each REST call.
	HTTPTimeout time.Duration `env:"MARKET_HTTP_TIMEOUT" envDefault:"10s"`

	// Env selects the logging format: "dev" and "local" log colored text,
	// anything else logs JSON.
	Env string `env:"MARKET_ENV" envDefault:"dev"`
}

// Load reads .env (if present) and the process environment, then fills in
// the derived defaults.
func Load() (Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	if cfg.WSURL == "" {
		cfg.WSURL = deriveWSURL(cfg.APIURL)
	}
	if cfg.CredentialsPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("config: resolve home directory: %w", err)
		}
		cfg.CredentialsPath = filepath.Join(home, ".market", "credentials.json")
	}
	return cfg, nil
}

// deriveWSURL maps the REST root to its websocket counterpart.
func deriveWSURL(apiURL string) string {
	switch {
	case strings.HasPrefix(apiURL, "https://"):
		return "wss://" + strings.TrimPrefix(apiURL, "https://")
	case strings.HasPrefix(apiURL, "http://"):
		return "ws://" + strings.TrimPrefix(apiURL, "http://")
	default:
		return apiURL
	}
}
