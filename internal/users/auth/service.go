// Copyright (c) 2026 Mavun. All rights reserved.

package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mavun/mavun/internal/platform/apperr"
	"github.com/mavun/mavun/internal/platform/sec"
	"github.com/mavun/mavun/internal/platform/validate"
	"github.com/mavun/mavun/pkg/urn"
)

// # Service Layer

// TokenPair bundles the credentials issued to a client after a successful
// authentication exchange.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Service orchestrates account lifecycle and session management.
type Service struct {
	users    UserRepository
	sessions SessionStore
	tokens   *sec.TokenService
	logger   *slog.Logger
}

// NewService constructs a new authentication [Service].
func NewService(users UserRepository, sessions SessionStore, tokens *sec.TokenService, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// # Account Lifecycle

/*
Register creates a new account with a minted user URN.

Description: Validates the profile fields, hashes the password with bcrypt,
and persists the account with the default member role.

Parameters:
  - context: context.Context
  - username: string
  - email: string
  - password: string
  - displayName: string

Returns:
  - *User: The created account
  - error: Validation failure or apperr.Conflict on duplicates
*/
func (service *Service) Register(context context.Context, username, email, password, displayName string) (*User, error) {

	validator := &validate.Validator{}
	validator.Required(FieldUsername, username).MinLen(FieldUsername, username, 3).MaxLen(FieldUsername, username, 32)
	validator.Required(FieldEmail, email).MaxLen(FieldEmail, email, 254)
	validator.Custom(FieldEmail, !strings.Contains(email, "@"), "Must be a valid email address")
	validator.Required(FieldPassword, password).MinLen(FieldPassword, password, 8).MaxLen(FieldPassword, password, 72)
	validator.MaxLen(FieldDisplayName, displayName, 64)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	hash, err := sec.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if displayName == "" {
		displayName = username
	}

	user := &User{
		ID:           urn.New(urn.TypeUser),
		Username:     strings.ToLower(username),
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		DisplayName:  displayName,
		Role:         sec.RoleMember,
	}

	if err := service.users.Create(context, user); err != nil {
		return nil, err
	}

	service.logger.Info("account registered",
		slog.String("user_urn", user.ID.String()),
		slog.String("username", user.Username),
	)

	return user, nil
}

/*
Login authenticates a username/email + password pair and opens a session.

Description: The password check runs even against a generic failure path so
valid and invalid logins are indistinguishable to the caller beyond the
boolean outcome.

Parameters:
  - context: context.Context
  - login: string (username or email)
  - password: string
  - userAgent: string (session metadata)
  - ipAddress: string (session metadata)

Returns:
  - *User: The authenticated account
  - *TokenPair: Access and refresh credentials
  - error: apperr.Unauthorized on bad credentials
*/
func (service *Service) Login(context context.Context, login, password, userAgent, ipAddress string) (*User, *TokenPair, error) {

	validator := &validate.Validator{}
	validator.Required(FieldLogin, login).Required(FieldPassword, password)
	if err := validator.Err(); err != nil {
		return nil, nil, err
	}

	user, err := service.users.FindByLogin(context, strings.ToLower(login))
	if err != nil {
		return nil, nil, apperr.Unauthorized("Invalid credentials")
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, apperr.Unauthorized("Invalid credentials")
	}

	pair, err := service.openSession(context, user, userAgent, ipAddress)
	if err != nil {
		return nil, nil, err
	}

	service.logger.Info("login succeeded", slog.String("user_urn", user.ID.String()))

	return user, pair, nil
}

/*
Refresh rotates a refresh token and issues a fresh access token.

Description: The presented token is digested and looked up; a hit invalidates
the old session and opens a new one, so every refresh token is single-use.

Parameters:
  - context: context.Context
  - refreshToken: string (raw token from the cookie)
  - userAgent: string
  - ipAddress: string

Returns:
  - *User: The session's account
  - *TokenPair: Fresh credentials
  - error: apperr.Unauthorized on an unknown or expired token
*/
func (service *Service) Refresh(context context.Context, refreshToken, userAgent, ipAddress string) (*User, *TokenPair, error) {

	digest := sec.DigestToken(refreshToken)

	session, err := service.sessions.Get(context, digest)
	if err != nil {
		return nil, nil, err
	}

	userURN, err := urn.Parse(session.UserURN)
	if err != nil {
		return nil, nil, apperr.Unauthorized("Session identity is corrupt")
	}

	user, err := service.users.FindByID(context, userURN)
	if err != nil {
		return nil, nil, apperr.Unauthorized("Account no longer exists")
	}

	// Single-use rotation: drop the old session before minting the next
	if err := service.sessions.Delete(context, digest); err != nil {
		return nil, nil, err
	}

	pair, err := service.openSession(context, user, userAgent, ipAddress)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

/*
Logout invalidates the presented refresh token. Unknown tokens are a no-op so
logout is idempotent.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - error: Storage failures only
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return service.sessions.Delete(context, sec.DigestToken(refreshToken))
}

/*
Me returns the account behind an authenticated identity.

Parameters:
  - context: context.Context
  - id: urn.URN ("urn:mvn:user:...")

Returns:
  - *User: Hydrated account
  - error: apperr.NotFound if missing
*/
func (service *Service) Me(context context.Context, id urn.URN) (*User, error) {
	return service.users.FindByID(context, id)
}

// # Session Issuance

// openSession mints the access token and a single-use refresh session.
func (service *Service) openSession(context context.Context, user *User, userAgent, ipAddress string) (*TokenPair, error) {

	accessToken, err := service.tokens.GenerateAccessToken(user.ID.String(), user.Username, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	session := &Session{
		UserURN:   user.ID.String(),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		CreatedAt: time.Now().UTC(),
	}

	if err := service.sessions.Set(context, sec.DigestToken(refreshToken), session, RefreshTokenTTL); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(AccessTokenTTL.Seconds()),
	}, nil
}
