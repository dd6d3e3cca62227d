// Copyright (c) 2026 Mavun. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mavun/mavun/internal/platform/apperr"
	"github.com/mavun/mavun/internal/platform/database/schema"
	"github.com/mavun/mavun/internal/platform/dberr"
	"github.com/mavun/mavun/internal/platform/sec"
	"github.com/mavun/mavun/pkg/urn"
)

// # PostgreSQL User Repository

// userRepository implements the [UserRepository] interface using pgx.
type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a PostgreSQL backed account store.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

/*
FindByID retrieves an account by its URN.

Parameters:
  - context: context.Context
  - id: urn.URN

Returns:
  - *User: Hydrated account
  - error: apperr.NotFound if the account does not exist
*/
func (repository *userRepository) FindByID(context context.Context, id urn.URN) (*User, error) {

	table := schema.UsersAccount
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(table.Columns(), ", "), table.Table, table.ID)

	return scanUser(repository.pool.QueryRow(context, query, id.String()))
}

/*
FindByLogin retrieves an account by username or email, matched
case-insensitively. The service lowercases both at registration, so the
comparison here is a plain equality on either column.

Parameters:
  - context: context.Context
  - login: string

Returns:
  - *User: Hydrated account including the password hash
  - error: apperr.NotFound if no account matches
*/
func (repository *userRepository) FindByLogin(context context.Context, login string) (*User, error) {

	table := schema.UsersAccount
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 OR %s = $1`,
		strings.Join(table.Columns(), ", "), table.Table, table.Username, table.Email)

	return scanUser(repository.pool.QueryRow(context, query, login))
}

/*
Create persists a new account.

Description: Unique-violation errors on the username or email columns map to
apperr.Conflict so the handler can respond with a clean 409.

Parameters:
  - context: context.Context
  - u: *User

Returns:
  - error: apperr.Conflict on duplicates, otherwise execution errors
*/
func (repository *userRepository) Create(context context.Context, user *User) error {

	table := schema.UsersAccount
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, table.Table,
		table.ID, table.Username, table.Email,
		table.PasswordHash, table.DisplayName, table.Role,
	)

	_, err := repository.pool.Exec(context, query,
		user.ID.String(), user.Username, user.Email,
		user.PasswordHash, user.DisplayName, string(user.Role),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflict("Username or email is already taken")
		}
		return fmt.Errorf("postgres: failed to create account: %w", err)
	}

	return nil
}

/*
Update persists profile changes to an existing account.

Parameters:
  - context: context.Context
  - u: *User

Returns:
  - error: apperr.NotFound if the account is missing
*/
func (repository *userRepository) Update(context context.Context, user *User) error {

	table := schema.UsersAccount
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $1, %s = $2, %s = $3, %s = NOW()
		WHERE %s = $4
	`, table.Table,
		table.DisplayName, table.Role, table.PasswordHash, table.UpdatedAt,
		table.ID,
	)

	result, err := repository.pool.Exec(context, query,
		user.DisplayName, string(user.Role), user.PasswordHash, user.ID.String(),
	)
	if err != nil {
		return dberr.Wrap(err, "account")
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("account")
	}

	return nil
}

// # Row Hydration

func scanUser(row pgx.Row) (*User, error) {

	user := &User{}
	var rawID, rawRole string

	err := row.Scan(
		&rawID, &user.Username, &user.Email,
		&user.PasswordHash, &user.DisplayName, &rawRole,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "account")
	}

	id, err := urn.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("postgres: corrupt account identity %q: %w", rawID, err)
	}
	user.ID = id
	user.Role = parseRole(rawRole)

	return user, nil
}

func parseRole(raw string) (role sec.UserRole) {
	switch sec.UserRole(raw) {
	case sec.RoleAdmin, sec.RoleModerator, sec.RoleUploader, sec.RoleMember:
		return sec.UserRole(raw)
	default:
		return sec.RoleMember
	}
}
