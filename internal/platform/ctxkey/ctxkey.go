// Copyright (c) 2026 Mavun. All rights reserved.

// Package ctxkey defines the typed context keys shared between middleware and
// handlers. Keys use an unexported type, so a third-party package storing a
// plain string "request_id" can never collide with ours: context lookups
// match on both value and type.
package ctxkey

type key string

const (
	// KeyRequestID carries the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyUser carries the authenticated user claims.
	KeyUser key = "user"

	// KeyLogger carries the request-scoped [*log/slog.Logger].
	KeyLogger key = "logger"
)
