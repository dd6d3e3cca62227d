// Copyright (c) 2026 Mavun. All rights reserved.

package api

import (
	"log/slog"
	"net/http"

	"github.com/mavun/mavun/internal/platform/constants"
	"github.com/mavun/mavun/internal/platform/respond"
)

// HealthDependencies holds the injectable dependency checks behind /ready.
type HealthDependencies struct {
	// CheckDatabase pings the PostgreSQL pool.
	CheckDatabase func() error

	// CheckCache pings the Redis client.
	CheckCache func() error
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

type dependencyCheck struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewHealthHandlers creates the /health and /ready handler funcs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health. It only proves the process is serving.
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{
		constants.FieldStatus: "ok",
		"version":             constants.AppVersion,
	})
}

// readiness handles GET /ready. Any failing dependency degrades the whole
// answer to a 503 so load balancers stop routing here.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	checks := []dependencyCheck{
		handler.run("postgres", handler.dependencies.CheckDatabase),
		handler.run("redis", handler.dependencies.CheckCache),
	}

	status, httpStatus := "ready", http.StatusOK
	for _, check := range checks {
		if !check.IsOK {
			status, httpStatus = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	respond.JSON(writer, httpStatus, respond.SuccessEnvelope{Data: map[string]any{
		constants.FieldStatus: status,
		constants.FieldChecks: checks,
	}})
}

// run executes a single dependency check. A nil check counts as healthy so
// partial wiring in tests does not fail readiness.
func (handler *healthHandler) run(name string, check func() error) dependencyCheck {
	result := dependencyCheck{Name: name, IsOK: true}
	if check == nil {
		return result
	}

	if err := check(); err != nil {
		result.IsOK = false
		result.Error = err.Error()
		handler.logger.Error("readiness_check_failed",
			slog.String("dependency", name),
			slog.Any("error", err),
		)
	}
	return result
}
