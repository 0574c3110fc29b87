package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppCfg struct{ Env, Port, CatalogPath string }
type DBCfg struct{ DSN string }
type RedisCfg struct{ Addr, Prefix string }

// PrefsCfg selects where column visibility preferences are kept.
type PrefsCfg struct {
	Backend string // memory | redis | postgres
}

type UpstreamCfg struct {
	TimeoutSec int
	MaxRetries uint64
}

type SessionCfg struct {
	SearchDebounce time.Duration
	IdleTTL        time.Duration
	SweepEvery     time.Duration
}

type SecurityCfg struct {
	ConsoleToken string // guards the /api/v1 routes; empty disables the check
}

type Cfg struct {
	App      AppCfg
	DB       DBCfg
	Redis    RedisCfg
	Prefs    PrefsCfg
	Upstream UpstreamCfg
	Sessions SessionCfg
	Sec      SecurityCfg
	LogLevel string
}

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Load reads .env (if present) and the environment, and exits on invalid
// settings.
func Load() Cfg {
	// 1) Load .env into process env (if file exists)
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("could not parse .env")
	}

	// 2) Read from env via viper
	v := viper.New()
	v.AutomaticEnv()

	cfg, err := FromViper(v)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	return cfg
}

// FromViper applies defaults to v and validates the result.
func FromViper(v *viper.Viper) (Cfg, error) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("CATALOG_PATH", "views.yaml")
	v.SetDefault("PREFS_BACKEND", BackendMemory)
	v.SetDefault("REDIS_PREFIX", "listconsole:prefs:")
	v.SetDefault("UPSTREAM_TIMEOUT_SEC", 30)
	v.SetDefault("UPSTREAM_MAX_RETRIES", 2)
	v.SetDefault("SEARCH_DEBOUNCE", "300ms")
	v.SetDefault("SESSION_IDLE_TTL", "30m")
	v.SetDefault("SESSION_SWEEP_EVERY", "1m")
	v.SetDefault("LOG_LEVEL", "info")

	cfg := Cfg{
		App: AppCfg{
			Env:         v.GetString("APP_ENV"),
			Port:        v.GetString("APP_PORT"),
			CatalogPath: v.GetString("CATALOG_PATH"),
		},
		DB:    DBCfg{DSN: v.GetString("DB_DSN")},
		Redis: RedisCfg{Addr: v.GetString("REDIS_ADDR"), Prefix: v.GetString("REDIS_PREFIX")},
		Prefs: PrefsCfg{Backend: strings.ToLower(strings.TrimSpace(v.GetString("PREFS_BACKEND")))},
		Upstream: UpstreamCfg{
			TimeoutSec: v.GetInt("UPSTREAM_TIMEOUT_SEC"),
			MaxRetries: v.GetUint64("UPSTREAM_MAX_RETRIES"),
		},
		Sessions: SessionCfg{
			SearchDebounce: v.GetDuration("SEARCH_DEBOUNCE"),
			IdleTTL:        v.GetDuration("SESSION_IDLE_TTL"),
			SweepEvery:     v.GetDuration("SESSION_SWEEP_EVERY"),
		},
		Sec:      SecurityCfg{ConsoleToken: strings.TrimSpace(v.GetString("CONSOLE_TOKEN"))},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	// 3) Fail fast on required settings
	switch cfg.Prefs.Backend {
	case BackendMemory:
	case BackendRedis:
		if cfg.Redis.Addr == "" {
			return cfg, fmt.Errorf("REDIS_ADDR is required when PREFS_BACKEND=redis")
		}
	case BackendPostgres:
		if cfg.DB.DSN == "" {
			return cfg, fmt.Errorf("DB_DSN is required when PREFS_BACKEND=postgres")
		}
	default:
		return cfg, fmt.Errorf("unknown PREFS_BACKEND %q", cfg.Prefs.Backend)
	}
	if cfg.Sessions.IdleTTL <= 0 || cfg.Sessions.SweepEvery <= 0 {
		return cfg, fmt.Errorf("SESSION_IDLE_TTL and SESSION_SWEEP_EVERY must be positive")
	}
	if cfg.Sessions.SearchDebounce < 0 {
		return cfg, fmt.Errorf("SEARCH_DEBOUNCE must not be negative")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

// Level returns the configured zerolog level, defaulting to info.
func (c Cfg) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
