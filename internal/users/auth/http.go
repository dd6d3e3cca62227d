// Copyright (c) 2026 Mavun. All rights reserved.

package auth

// HTTP interface for registration, login, and session management.
//
// Refresh tokens travel in an HttpOnly cookie scoped to the auth routes;
// access tokens travel in the response body and are the client's job to
// attach as a Bearer header.

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mavun/mavun/internal/platform/apperr"
	"github.com/mavun/mavun/internal/platform/constants"
	"github.com/mavun/mavun/internal/platform/middleware"
	requestutil "github.com/mavun/mavun/internal/platform/request"
	"github.com/mavun/mavun/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for authentication.
type Handler struct {
	service *Service
	secure  bool
}

// NewHandler constructs a new auth [Handler]. secure controls the cookie
// Secure flag and is disabled only in development.
func NewHandler(service *Service, secure bool) *Handler {
	return &Handler{service: service, secure: secure}
}

// Routes returns a [chi.Router] with the authentication endpoints. Mounted
// at /auth.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Get("/me", handler.me)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// tokenResponse is the credential envelope returned by login and refresh.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	User        *User  `json:"user"`
}

// # Endpoints

/*
POST /api/v1/auth/register.

Response:
  - 201: User: The created account
  - 409: Username or email already taken
  - 422: Validation failure
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var payload registerRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Register(request.Context(), payload.Username, payload.Email, payload.Password, payload.DisplayName)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
POST /api/v1/auth/login.

Description: Exchanges credentials for an access token and a refresh cookie.

Response:
  - 200: tokenResponse
  - 401: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var payload loginRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, pair, err := handler.service.Login(request.Context(),
		payload.Login, payload.Password,
		request.UserAgent(), middleware.RealIP(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, pair.RefreshToken)
	respond.OK(writer, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   pair.ExpiresIn,
		User:        user,
	})
}

/*
POST /api/v1/auth/refresh.

Description: Rotates the refresh cookie and issues a fresh access token.

Response:
  - 200: tokenResponse
  - 401: Missing, unknown, or expired refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token"))
		return
	}

	user, pair, err := handler.service.Refresh(request.Context(),
		cookie.Value, request.UserAgent(), middleware.RealIP(request))
	if err != nil {
		handler.clearRefreshCookie(writer)
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, pair.RefreshToken)
	respond.OK(writer, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   pair.ExpiresIn,
		User:        user,
	})
}

/*
POST /api/v1/auth/logout.

Description: Invalidates the current refresh session and clears the cookie.
Idempotent; logging out twice succeeds.

Response:
  - 204: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	token := ""
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		token = cookie.Value
	}

	if err := handler.service.Logout(request.Context(), token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearRefreshCookie(writer)
	respond.NoContent(writer)
}

/*
GET /api/v1/auth/me.

Response:
  - 200: User: The authenticated account
  - 401: Missing or invalid token
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.RequiredUserURN(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Me(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// # Cookie Management

func (handler *Handler) setRefreshCookie(writer http.ResponseWriter, token string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    token,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  time.Now().Add(RefreshTokenTTL),
		HttpOnly: true,
		Secure:   handler.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (handler *Handler) clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   handler.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
