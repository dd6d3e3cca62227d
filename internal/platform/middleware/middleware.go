// Copyright (c) 2026 Mavun. All rights reserved.

/*
Package middleware provides the cross-cutting HTTP processing chain.

Every request passes through the same decorator stack before reaching a domain
handler: correlation ID, structured request logging, per-IP rate limiting,
panic containment, token authentication, and CORS. Handlers downstream can
assume a request ID and a request-scoped logger are always present in the
context.
*/
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mavun/mavun/internal/platform/constants"
	"github.com/mavun/mavun/internal/platform/ctxutil"
)

// # Correlation

// RequestID ensures every request carries a correlation ID, honoring one
// supplied by the client and minting one otherwise. The ID is echoed back in
// the response headers so clients can quote it in bug reports.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			id := request.Header.Get(constants.HeaderXRequestID)
			if id == "" {
				id = uuid.New().String()
			}

			writer.Header().Set(constants.HeaderXRequestID, id)
			next.ServeHTTP(writer, request.WithContext(
				ctxutil.WithRequestID(request.Context(), id)))
		})
	}
}

// # Request Logging

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// StructuredLogger emits one log line per finished request and seeds the
// context with a request-scoped sub-logger carrying the correlation fields.
// 5xx responses log at error level, 4xx at warn, everything else at info.
func StructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			started := time.Now()

			requestLogger := logger.With(
				slog.String("request_id", ctxutil.GetRequestID(request.Context())),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
				slog.String("ip", RealIP(request)),
			)

			ctx := ctxutil.WithLogger(request.Context(), requestLogger)
			recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(recorder, request.WithContext(ctx))

			level := slog.LevelInfo
			switch {
			case recorder.status >= 500:
				level = slog.LevelError
			case recorder.status >= 400:
				level = slog.LevelWarn
			}

			attrs := []any{
				slog.Int("status", recorder.status),
				slog.Int64("latency_ms", time.Since(started).Milliseconds()),
				slog.String("user_agent", request.UserAgent()),
			}
			if claims := ctxutil.GetAuthUser(ctx); claims != nil {
				attrs = append(attrs, slog.String("user_urn", claims.UserURN))
			}

			requestLogger.Log(ctx, level, "http_request_finished", attrs...)
		})
	}
}

// # Rate Limiting

// limiterRegistry tracks one token bucket per client IP. Entries for idle
// clients are reaped by a background sweep so the map stays bounded.
type limiterRegistry struct {
	mutex   sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

func (registry *limiterRegistry) allow(ip string) bool {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	client, ok := registry.clients[ip]
	if !ok {
		client = &clientLimiter{
			bucket: rate.NewLimiter(
				rate.Limit(constants.DefaultRateLimitRPS),
				constants.DefaultRateLimitBurst,
			),
		}
		registry.clients[ip] = client
	}
	client.lastSeen = time.Now()

	return client.bucket.Allow()
}

func (registry *limiterRegistry) sweep(olderThan time.Duration) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	for ip, client := range registry.clients {
		if time.Since(client.lastSeen) > olderThan {
			delete(registry.clients, ip)
		}
	}
}

// RateLimit rejects clients that exceed the per-IP token bucket with a 429.
// The sweep goroutine exits when the supplied context is cancelled.
func RateLimit(context context.Context) func(http.Handler) http.Handler {
	registry := &limiterRegistry{clients: make(map[string]*clientLimiter)}

	go func() {
		ticker := time.NewTicker(constants.RateLimitCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				registry.sweep(constants.RateLimitClientTTL)
			case <-context.Done():
				return
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if !registry.allow(RealIP(request)) {
				writeError(writer, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Rate limit exceeded")
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}

// # Panic Containment

// PanicRecovery converts downstream panics into logged 500 responses so a
// single bad request cannot take the process down.
func PanicRecovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}

				stack := make([]byte, 2048)
				written := runtime.Stack(stack, false)

				ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(),
					"panic_recovered",
					slog.Any("error", recovered),
					slog.String("stack", string(stack[:written])),
				)

				writeError(writer, http.StatusInternalServerError,
					"INTERNAL_SERVER_ERROR", "An unexpected error occurred")
			}()

			next.ServeHTTP(writer, request)
		})
	}
}

// # Cross-Origin Resource Sharing

// AppConfig defines the behavior needed by the CORS middleware.
type AppConfig interface {
	IsDevelopment() bool
	ExtraAllowedOrigins() []string
}

// CORS validates the Origin header and injects the standard response headers.
// Development mode accepts any origin; production accepts mavun.app
// subdomains plus the configured extra origins.
func CORS(cfg AppConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			origin := request.Header.Get(constants.HeaderOrigin)
			if origin == "" {
				next.ServeHTTP(writer, request)
				return
			}

			allowed := cfg.IsDevelopment() ||
				strings.HasSuffix(origin, "mavun.app") ||
				slices.Contains(cfg.ExtraAllowedOrigins(), origin)

			if allowed {
				header := writer.Header()
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				header.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization, X-Request-ID")
				header.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID")
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Set("Access-Control-Max-Age", "300")
			}

			// Pre-flight requests end here
			if request.Method == http.MethodOptions {
				writer.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Helpers

// RealIP extracts the client IP, preferring the common proxy headers over the
// raw connection address.
func RealIP(request *http.Request) string {
	if ip := request.Header.Get(constants.HeaderXRealIP); ip != "" {
		return ip
	}
	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	host, _, _ := net.SplitHostPort(request.RemoteAddr)
	return host
}

// writeError emits a minimal JSON error payload for middleware-level
// rejections that never reach the respond package.
func writeError(writer http.ResponseWriter, status int, code, message string) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(map[string]string{
		constants.FieldCode:  code,
		constants.FieldError: message,
	})
}
