// Copyright (c) 2026 Mavun. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/mavun/mavun/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error
// type. The resource name feeds the not-found message ("account", "series", ...).
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	// Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}
