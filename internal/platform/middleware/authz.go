// Copyright (c) 2026 Mavun. All rights reserved.

package middleware

import (
	"net/http"
	"strings"

	"github.com/mavun/mavun/internal/platform/apperr"
	"github.com/mavun/mavun/internal/platform/ctxutil"
	"github.com/mavun/mavun/internal/platform/respond"
	"github.com/mavun/mavun/internal/platform/sec"
)

// TokenVerifier is the slice of the token service the middleware needs.
// Declaring it here keeps the middleware mockable in handler tests.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// Authenticate verifies a bearer token when one is presented and stores the
// resulting claims in the context. Requests without an Authorization header
// pass through as anonymous; rejection is left to [RequireAuth] and
// [RequireRole] on the routes that need it.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			header := request.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(writer, request)
				return
			}

			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			next.ServeHTTP(writer, request.WithContext(
				ctxutil.WithAuthUser(request.Context(), claims)))
		})
	}
}

// RequireAuth rejects anonymous requests. Mount after [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole rejects callers below the given role. It implies [RequireAuth],
// so routes need only one of the two. Mount after [Authenticate].
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}
			if !sec.UserRole(claims.Role).AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}
