package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.SRUTimeout)
	assert.Equal(t, 1, cfg.MaxMatches)
	assert.Equal(t, 25, cfg.MaxCandidates)
	assert.Equal(t, 0.9, cfg.Threshold)
	assert.Equal(t, 20000, cfg.ServerMaxResult)
	assert.Equal(t, 50, cfg.MaxRecordsPerRequest)
	assert.Equal(t, 8888, cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("RECORDMATCHER_SRU_URL", "http://localhost:9999/sru")
	t.Setenv("RECORDMATCHER_SRU_TIMEOUT", "5s")
	t.Setenv("RECORDMATCHER_MAX_CANDIDATES", "100")
	t.Setenv("RECORDMATCHER_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/sru", cfg.SRUURL)
	assert.Equal(t, 5*time.Second, cfg.SRUTimeout)
	assert.Equal(t, 100, cfg.MaxCandidates)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "threshold above one", key: "RECORDMATCHER_THRESHOLD", value: "1.5"},
		{name: "zero matches", key: "RECORDMATCHER_MAX_MATCHES", value: "0"},
		{name: "unknown log level", key: "RECORDMATCHER_LOG_LEVEL", value: "chatty"},
		{name: "not a number", key: "RECORDMATCHER_PORT", value: "http"},
		{name: "not a url", key: "RECORDMATCHER_SRU_URL", value: "melinda"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidateNamesField(t *testing.T) {
	type job struct {
		MaxMatches int `yaml:"max_matches" validate:"gte=1"`
	}

	err := Validate(job{MaxMatches: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_matches")

	assert.NoError(t, Validate(job{MaxMatches: 2}))
}
