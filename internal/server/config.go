// Package server provides configuration helpers that define runtime
// defaults, validation, and rate-limiting parameters for the Nexus chat
// service.
package server

import (
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// RateLimitConfig defines the parameters for per-connection message rate
// limiting.
type RateLimitConfig struct {
	Burst          int           `envconfig:"RATE_LIMIT_BURST"`
	RefillInterval time.Duration `envconfig:"RATE_LIMIT_REFILL_INTERVAL"`
}

// Config holds the server configuration settings including security
// controls and message history limits.
type Config struct {
	Port           string   `envconfig:"SERVER_PORT"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`
	MaxMessageSize int64    `envconfig:"MAX_MESSAGE_SIZE"`
	RateLimit      RateLimitConfig
	HistoryLimit   int `envconfig:"HISTORY_LIMIT"`
	HistoryReplay  int `envconfig:"HISTORY_REPLAY"`
}

var (
	configMu        sync.RWMutex
	activeConfig    Config
	allowedOrigins  map[string]struct{}
	allowAllOrigins bool
)

func init() {
	SetConfig(nil)
}

func defaultConfig() Config {
	return Config{
		Port: ":8080",
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		MaxMessageSize: 4096,
		RateLimit: RateLimitConfig{
			Burst:          5,
			RefillInterval: time.Second,
		},
		HistoryLimit:  100,
		HistoryReplay: 50,
	}
}

func sanitizeConfig(cfg Config) Config {
	if cfg.Port == "" {
		cfg.Port = ":8080"
	}

	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}

	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 5
	}

	if cfg.RateLimit.RefillInterval <= 0 {
		cfg.RateLimit.RefillInterval = time.Second
	}

	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 100
	}

	if cfg.HistoryReplay <= 0 || cfg.HistoryReplay > cfg.HistoryLimit {
		cfg.HistoryReplay = 50
	}

	normalizedOrigins, allowAll := normalizeOrigins(cfg.AllowedOrigins)
	cfg.AllowedOrigins = normalizedOrigins

	configMu.Lock()
	defer configMu.Unlock()

	activeConfig = cfg
	allowAllOrigins = allowAll
	allowedOrigins = make(map[string]struct{}, len(normalizedOrigins))
	for _, origin := range normalizedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	return cfg
}

// SetConfig applies the provided configuration. Passing nil resets to
// defaults.
func SetConfig(cfg *Config) {
	if cfg == nil {
		defaultCfg := defaultConfig()
		sanitizeConfig(defaultCfg)
		return
	}

	sanitized := Config{
		Port:           cfg.Port,
		AllowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
		MaxMessageSize: cfg.MaxMessageSize,
		RateLimit: RateLimitConfig{
			Burst:          cfg.RateLimit.Burst,
			RefillInterval: cfg.RateLimit.RefillInterval,
		},
		HistoryLimit:  cfg.HistoryLimit,
		HistoryReplay: cfg.HistoryReplay,
	}
	sanitizeConfig(sanitized)
}

func currentConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()

	cfg := activeConfig
	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	return cfg
}

// NewConfig creates a Config instance populated with default values for all
// settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromEnv creates a Config instance from environment variables,
// falling back to default values for anything unset. ALLOWED_ORIGINS is a
// comma-separated list; RATE_LIMIT_REFILL_INTERVAL is a Go duration string
// such as "1s".
func NewConfigFromEnv() *Config {
	cfg := defaultConfig()
	if err := envconfig.Process("", &cfg); err != nil {
		log.Printf("Error reading configuration from environment: %v; using defaults", err)
		cfg = defaultConfig()
	}
	return &cfg
}
