// Copyright (c) 2026 Mavun. All rights reserved.

package auth

import (
	"context"
	"time"

	"github.com/mavun/mavun/pkg/urn"
)

// # Identity Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the user with the given URN.

		Parameters:
		  - context: context.Context
		  - id: urn.URN ("urn:mvn:user:...")

		Returns:
		  - *User: Hydrated account
		  - error: apperr.NotFound if missing
	*/
	FindByID(context context.Context, id urn.URN) (*User, error)

	/*
		FindByLogin returns the user matching a username or email.

		Parameters:
		  - context: context.Context
		  - login: string (username or email, matched case-insensitively)

		Returns:
		  - *User: Hydrated account including the password hash
		  - error: apperr.NotFound if no account matches
	*/
	FindByLogin(context context.Context, login string) (*User, error)

	/*
		Create persists a new account.

		Parameters:
		  - context: context.Context
		  - u: *User

		Returns:
		  - error: apperr.Conflict on duplicate username/email
	*/
	Create(context context.Context, user *User) error

	/*
		Update persists profile changes to an existing account.

		Parameters:
		  - context: context.Context
		  - u: *User

		Returns:
		  - error: apperr.NotFound if the account is missing
	*/
	Update(context context.Context, user *User) error
}

// SessionStore defines the refresh-session contract. Keys are token digests,
// never raw tokens.
type SessionStore interface {

	/*
		Set stores a session under a token digest with a TTL.

		Parameters:
		  - context: context.Context
		  - digest: string (SHA-256 of the refresh token)
		  - session: *Session
		  - ttl: time.Duration

		Returns:
		  - error: Storage failures
	*/
	Set(context context.Context, digest string, session *Session, ttl time.Duration) error

	/*
		Get retrieves the session for a token digest.

		Parameters:
		  - context: context.Context
		  - digest: string

		Returns:
		  - *Session: The active session
		  - error: apperr.Unauthorized if absent or expired
	*/
	Get(context context.Context, digest string) (*Session, error)

	/*
		Delete removes a session, invalidating its refresh token.

		Parameters:
		  - context: context.Context
		  - digest: string

		Returns:
		  - error: Deletion failures
	*/
	Delete(context context.Context, digest string) error
}
