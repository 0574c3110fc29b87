package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "views.yaml", cfg.App.CatalogPath)
	assert.Equal(t, BackendMemory, cfg.Prefs.Backend)
	assert.Equal(t, 30, cfg.Upstream.TimeoutSec)
	assert.Equal(t, uint64(2), cfg.Upstream.MaxRetries)
	assert.Equal(t, 300*time.Millisecond, cfg.Sessions.SearchDebounce)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.IdleTTL)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("PREFS_BACKEND", " Redis ")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("SEARCH_DEBOUNCE", "0s")
	v.Set("LOG_LEVEL", "debug")
	v.Set("CONSOLE_TOKEN", " s3cret ")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Prefs.Backend)
	assert.Zero(t, cfg.Sessions.SearchDebounce)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, "s3cret", cfg.Sec.ConsoleToken)
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
		want string
	}{
		{name: "redis without addr", set: map[string]any{"PREFS_BACKEND": "redis"}, want: "REDIS_ADDR"},
		{name: "postgres without dsn", set: map[string]any{"PREFS_BACKEND": "postgres"}, want: "DB_DSN"},
		{name: "unknown backend", set: map[string]any{"PREFS_BACKEND": "etcd"}, want: "PREFS_BACKEND"},
		{name: "zero ttl", set: map[string]any{"SESSION_IDLE_TTL": "0s"}, want: "SESSION_IDLE_TTL"},
		{name: "bad level", set: map[string]any{"LOG_LEVEL": "loud"}, want: "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := FromViper(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
