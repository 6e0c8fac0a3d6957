// Package config loads process configuration from the environment and
// validates option structs.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment variable, e.g. RECORDMATCHER_SRU_URL.
const EnvPrefix = "recordmatcher"

type Config struct {
	SRUURL     string        `envconfig:"SRU_URL" default:"https://sru.api.melinda.kansalliskirjasto.fi/bib" validate:"required,url"`
	SRUTimeout time.Duration `envconfig:"SRU_TIMEOUT" default:"30s" validate:"gt=0"`
	LogLevel   string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Port       int           `envconfig:"PORT" default:"8888" validate:"gte=1,lte=65535"`

	MaxMatches           int     `envconfig:"MAX_MATCHES" default:"1" validate:"gte=1"`
	MaxCandidates        int     `envconfig:"MAX_CANDIDATES" default:"25" validate:"gte=1"`
	Threshold            float64 `envconfig:"THRESHOLD" default:"0.9" validate:"gt=0,lte=1"`
	ServerMaxResult      int     `envconfig:"SERVER_MAX_RESULT" default:"20000" validate:"gte=1"`
	MaxRecordsPerRequest int     `envconfig:"MAX_RECORDS_PER_REQUEST" default:"50" validate:"gte=1"`
	BatchConcurrency     int     `envconfig:"BATCH_CONCURRENCY" default:"4" validate:"gte=1"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
