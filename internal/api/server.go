// Copyright (c) 2026 Mavun. All rights reserved.

/*
Package api is the composition root of the HTTP transport: it assembles the
chi router, the global middleware chain, the health probes, and the mounted
domain handlers into a runnable [http.Server].

Only this package and cmd/api touch net/http server primitives; domain
packages expose chi.Router values and know nothing about ports or timeouts.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mavun/mavun/internal/core/catalog"
	"github.com/mavun/mavun/internal/core/permission"
	"github.com/mavun/mavun/internal/platform/config"
	"github.com/mavun/mavun/internal/platform/constants"
	"github.com/mavun/mavun/internal/platform/middleware"
	"github.com/mavun/mavun/internal/users/auth"
)

// Server wraps the router and the underlying [http.Server]. It is built once
// in main with every dependency injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// Handlers groups the domain handler sets the server mounts. Adding a domain
// means adding a field here and a mount below; nothing else changes.
type Handlers struct {
	// Liveness answers /health whenever the process is alive.
	Liveness http.HandlerFunc

	// Readiness answers /ready once every dependency is reachable.
	Readiness http.HandlerFunc

	// Auth serves registration, login, and session rotation.
	Auth *auth.Handler

	// Catalog serves series/unit management and discovery.
	Catalog *catalog.Handler

	// Permission serves editor delegation on catalogue targets.
	Permission *permission.Handler
}

// NewServer assembles the middleware chain and route table.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// Order matters: correlation and logging first, so every later rejection
	// is traceable; authentication before CORS so claims exist for all routes.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// Unauthenticated probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/series", h.Catalog.Routes())
		api.Mount("/units", h.Catalog.UnitRoutes())
		api.Mount("/permissions", h.Permission.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// ListenAndServe blocks until the server closes or fails.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests, giving up after the timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
