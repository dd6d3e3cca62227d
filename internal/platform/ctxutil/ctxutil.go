// Copyright (c) 2026 Mavun. All rights reserved.

// Package ctxutil reads and writes the per-request values (correlation ID,
// logger, auth claims) that the middleware chain stores in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/mavun/mavun/internal/platform/ctxkey"
	"github.com/mavun/mavun/internal/platform/sec"
)

// # Correlation

// WithRequestID attaches the request's correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID returns the correlation ID, or "" when the context carries none.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Logging

// WithLogger attaches a request-scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger returns the request-scoped logger, falling back to the process
// default so callers never need a nil check.
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// # Identity

// WithAuthUser attaches the verified token claims of the caller.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, user)
}

// GetAuthUser returns the caller's claims, or nil for anonymous requests.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	return claims
}
