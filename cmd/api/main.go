// Copyright (c) 2026 Mavun. All rights reserved.

// Command api is the entry point of the Mavun catalog server.
//
// Startup is strictly ordered: logger, config, PostgreSQL, Redis, migrations,
// token service, then handler wiring, so every later step can assume the
// earlier ones are healthy. No business logic lives here; everything is
// explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mavun/mavun/internal/api"
	"github.com/mavun/mavun/internal/core/catalog"
	"github.com/mavun/mavun/internal/core/permission"
	"github.com/mavun/mavun/internal/platform/config"
	"github.com/mavun/mavun/internal/platform/constants"
	"github.com/mavun/mavun/internal/platform/migration"
	pgstore "github.com/mavun/mavun/internal/platform/postgres"
	redisstore "github.com/mavun/mavun/internal/platform/redis"
	"github.com/mavun/mavun/internal/platform/sec"
	"github.com/mavun/mavun/internal/users/auth"
	"github.com/mavun/mavun/pkg/keylock"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// First, so even config failures come out as structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Mavun] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// A deadline on startup turns a misconfigured dependency into a fast,
	// loud failure instead of a hang.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Auth Service ───────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	// One shared lock registry: aggregation and permission writes against
	// the same target serialize on the same key.
	locks := keylock.New()

	userRepository := auth.NewUserRepository(pool)
	sessionStore := auth.NewSessionStore(rdb)
	authService := auth.NewService(userRepository, sessionStore, jwtSvc, log)
	authHandler := auth.NewHandler(authService, !cfg.IsDevelopment())

	seriesRepository := catalog.NewSeriesRepository(pool)
	unitRepository := catalog.NewUnitRepository(pool)

	permissionResolver := permission.NewResolver(
		permission.NewCatalogStore(seriesRepository, unitRepository), locks, log)
	permissionHandler := permission.NewHandler(permissionResolver)

	catalogService := catalog.NewService(seriesRepository, unitRepository, locks, log)
	catalogHandler := catalog.NewHandler(catalogService, permissionResolver)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Auth:       authHandler,
		Catalog:    catalogHandler,
		Permission: permissionHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must terminates the process with a structured error when a startup step
// fails. It never appears past the wiring phase; once serving, errors are
// returned and handled, not fatal.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
