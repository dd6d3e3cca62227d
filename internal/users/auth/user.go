// Copyright (c) 2026 Mavun. All rights reserved.

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (User, Session) and logic for
authentication and account lifecycle. User identities are native URNs
("urn:mvn:user:..."); every token and permission subject across the platform
refers back to them.
*/
package auth

import (
	"time"

	"github.com/mavun/mavun/internal/platform/sec"
	"github.com/mavun/mavun/pkg/urn"
)

// # Domain Entities

// User represents a registered member of the Mavun platform.
type User struct {
	ID           urn.URN      `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName  string       `json:"display_name"`
	Role         sec.UserRole `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Session represents an active refresh-token session. Sessions live in Redis
// keyed by the token digest; the raw token never touches storage.
type Session struct {
	UserURN   string    `json:"user_urn"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the
// authentication domain.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldDisplayName = "display_name"
	FieldLogin       = "login"
	FieldToken       = "token"
)

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	// Kept short to minimize the impact of a leaked token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the duration a refresh session remains valid.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshTokenLength is the byte length of the random secure token.
	RefreshTokenLength = 32
)
