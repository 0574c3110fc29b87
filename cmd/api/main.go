package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"listconsole/internal/catalog"
	"listconsole/internal/config"
	httpx "listconsole/internal/http"
	"listconsole/internal/listing"
	"listconsole/internal/services/views"
	"listconsole/internal/store/postgres"
	redisstore "listconsole/internal/store/redis"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	zerolog.SetGlobalLevel(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("listconsole stopped")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg config.Cfg) error {
	cat, err := catalog.Load(cfg.App.CatalogPath)
	if err != nil {
		return err
	}
	registry := catalog.FromCatalog(cat, cfg.Upstream.TimeoutSec, cfg.Upstream.MaxRetries)

	prefs, closePrefs, err := openPreferences(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePrefs()

	manager := views.NewManager(registry, prefs, cfg.Sessions.SearchDebounce)
	defer manager.Close()
	janitor := views.NewJanitor(manager, cfg.Sessions.IdleTTL, cfg.Sessions.SweepEvery)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      httpx.NewRouter(httpx.RouterDependencies{Config: cfg, Manager: manager}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		janitor.Run(ctx)
		return nil
	})
	g.Go(func() error {
		log.Info().
			Str("port", cfg.App.Port).
			Str("prefs", cfg.Prefs.Backend).
			Int("views", len(cat.Views)).
			Msg("listconsole API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openPreferences returns the configured column preference backend and its
// closer.
func openPreferences(ctx context.Context, cfg config.Cfg) (listing.PreferenceStore, func(), error) {
	switch cfg.Prefs.Backend {
	case config.BackendRedis:
		rdb, err := redisstore.Open(ctx, cfg.Redis.Addr)
		if err != nil {
			return nil, nil, err
		}
		repo := redisstore.NewPreferenceRepository(rdb, cfg.Redis.Prefix)
		return views.NewRepositoryPreferences(repo), func() { _ = rdb.Close() }, nil

	case config.BackendPostgres:
		pool, err := postgres.Open(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		repo := postgres.NewPreferenceRepository(pool)
		return views.NewRepositoryPreferences(repo), pool.Close, nil
	}
	return listing.NewMemoryPreferences(), func() {}, nil
}
