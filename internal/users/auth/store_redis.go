// Copyright (c) 2026 Mavun. All rights reserved.

package auth

import (
	stdctx "context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mavun/mavun/internal/platform/apperr"
	"github.com/mavun/mavun/internal/platform/constants"
)

// # Redis Session Store

// redisSessionStore implements [SessionStore] using Redis with native TTL
// expiry. Sessions disappear on their own; no sweeper required.
type redisSessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new Redis-backed [SessionStore].
func NewSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

/*
Set stores a session under a token digest with a TTL.

Parameters:
  - context: context.Context
  - digest: string (SHA-256 of the refresh token)
  - session: *Session
  - ttl: time.Duration

Returns:
  - error: Serialization or execution errors
*/
func (store *redisSessionStore) Set(context stdctx.Context, digest string, session *Session, ttl time.Duration) error {

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_session_marshal_failed: %w", err)
	}

	key := constants.RedisPrefixSession + digest
	if err := store.client.Set(context, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}

	return nil
}

/*
Get retrieves the session for a token digest.

Description: A missing key means the token was never issued, already rotated,
or expired; all three collapse into apperr.Unauthorized.

Parameters:
  - context: context.Context
  - digest: string

Returns:
  - *Session: The active session
  - error: apperr.Unauthorized or connectivity errors
*/
func (store *redisSessionStore) Get(context stdctx.Context, digest string) (*Session, error) {

	key := constants.RedisPrefixSession + digest

	payload, err := store.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.Unauthorized("Session is invalid or expired")
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	session := &Session{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, fmt.Errorf("redis_session_unmarshal_failed: %w", err)
	}

	return session, nil
}

/*
Delete removes a session, invalidating its refresh token. Deleting an absent
key is a no-op.

Parameters:
  - context: context.Context
  - digest: string

Returns:
  - error: Execution errors
*/
func (store *redisSessionStore) Delete(context stdctx.Context, digest string) error {

	key := constants.RedisPrefixSession + digest
	if err := store.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}

	return nil
}
