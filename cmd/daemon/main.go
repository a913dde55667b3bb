// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ManuGH/pendel/internal/api"
	"github.com/ManuGH/pendel/internal/cache"
	"github.com/ManuGH/pendel/internal/catalog"
	"github.com/ManuGH/pendel/internal/config"
	"github.com/ManuGH/pendel/internal/daemon"
	"github.com/ManuGH/pendel/internal/export"
	"github.com/ManuGH/pendel/internal/health"
	"github.com/ManuGH/pendel/internal/history"
	xglog "github.com/ManuGH/pendel/internal/log"
	"github.com/ManuGH/pendel/internal/telemetry"
)

var (
	version   = "v0.3.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	ctx := daemon.WaitForShutdown()

	// Config path: explicit via --config, otherwise ${PENDEL_DATA_DIR}/config.yaml
	// if it exists (so a previously written config persists across restarts).
	effectivePath := strings.TrimSpace(*configPath)
	if effectivePath == "" {
		dataDir := strings.TrimSpace(os.Getenv("PENDEL_DATA_DIR"))
		if dataDir == "" {
			dataDir = "./data"
		}
		autoPath := filepath.Join(dataDir, "config.yaml")
		if _, err := os.Stat(autoPath); err == nil {
			effectivePath = autoPath
		}
	}

	holder, err := daemon.Bootstrap(effectivePath, version)
	if err != nil {
		xglog.Configure(xglog.Config{Service: "pendel"})
		fatal := xglog.WithComponent("daemon")
		fatal.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", effectivePath).
			Msg("failed to load configuration")
	}
	cfg := holder.Get()

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Service: "pendel",
	})
	logger := xglog.WithComponent("daemon")

	if effectivePath != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file").
			Str("path", effectivePath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	if err := health.PerformStartupChecks(ctx, *cfg); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.check_failed").
			Msg("startup checks failed, verify configuration and permissions")
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		ServiceName:    "pendel",
		ServiceVersion: version,
		Protocol:       cfg.OTLP.Protocol,
		Endpoint:       cfg.OTLP.Endpoint,
		Insecure:       cfg.OTLP.Insecure,
		SamplingRate:   1,
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "telemetry.init_failed").
			Msg("failed to initialize tracer provider")
	}

	responseCache, closeCache := buildCache(cfg, logger)

	source, err := catalog.New(cfg.Catalog.BaseURL, catalog.Options{
		Timeout:    cfg.Catalog.Timeout,
		MaxRetries: cfg.Catalog.Retries,
		RatePerSec: cfg.Catalog.RatePerSec,
		Burst:      cfg.Catalog.Burst,
		UserAgent:  "pendel/" + version,
		Cache:      responseCache,
		CacheTTL:   cfg.Cache.TTL,
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "catalog.init_failed").
			Msg("failed to build catalog client")
	}

	store, err := history.Open(cfg.Storage.Backend, cfg.DataDir)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "history.open_failed").
			Str("backend", cfg.Storage.Backend).
			Msg("failed to open watch history store")
	}

	exports, err := export.NewStore(cfg.DataDir)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "export.init_failed").
			Msg("failed to prepare pack snapshot store")
	}

	healthMgr := health.NewManager(version)
	healthMgr.RegisterChecker(health.NewCatalogChecker(source.BreakerState, source.LastSuccess, 15*time.Minute))
	healthMgr.RegisterChecker(health.NewStoreChecker(store.Ping))
	healthMgr.RegisterChecker(health.NewDataDirChecker(cfg.DataDir))

	server, err := api.New(*cfg, api.Deps{
		Source:  source,
		History: store,
		Exports: exports,
		Health:  healthMgr,
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "api.init_failed").
			Msg("failed to build API server")
	}
	server.SetConfigHolder(holder)

	manager, err := daemon.NewManager(daemon.DefaultServerConfig(cfg.Listen), daemon.Deps{
		Logger:     logger,
		APIHandler: server.Handler(),
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "daemon.init_failed").
			Msg("failed to build daemon manager")
	}

	// LIFO: telemetry flushes last so shutdown spans still export.
	manager.RegisterShutdownHook("telemetry", tp.Shutdown)
	manager.RegisterShutdownHook("config-watcher", func(context.Context) error {
		holder.Stop()
		return nil
	})
	manager.RegisterShutdownHook("cache", func(context.Context) error {
		closeCache()
		return nil
	})
	manager.RegisterShutdownHook("history-store", func(context.Context) error {
		return store.Close()
	})

	warmer := daemon.NewWarmer(source, holder.Get, logger)
	app := daemon.NewApp(logger, manager, holder, server, warmer)

	logger.Info().
		Str("event", "daemon.starting").
		Str("listen", cfg.Listen).
		Str("catalog_url", cfg.Catalog.BaseURL).
		Str("storage_backend", cfg.Storage.Backend).
		Msg("starting pendel daemon")

	if err := app.Run(ctx); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "daemon.failed").
			Msg("daemon exited with error")
	}

	logger.Info().Str("event", "daemon.stopped").Msg("daemon stopped")
}

// buildCache selects the catalog response cache backend. Redis failures fall
// back to the in-memory cache: a cold cache is a slower daemon, not a dead one.
func buildCache(cfg *config.AppConfig, logger zerolog.Logger) (cache.Cache, func()) {
	if cfg.Cache.RedisAddr == "" {
		return cache.NewMemoryCache(time.Minute), func() {}
	}

	rc, err := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	}, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("event", "cache.redis_unavailable").
			Str("addr", cfg.Cache.RedisAddr).
			Msg("redis unreachable, falling back to in-memory cache")
		return cache.NewMemoryCache(time.Minute), func() {}
	}

	logger.Info().
		Str("event", "cache.redis_connected").
		Str("addr", cfg.Cache.RedisAddr).
		Msg("using redis catalog cache")
	return rc, func() { _ = rc.Close() }
}
