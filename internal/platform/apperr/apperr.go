// Copyright (c) 2026 Mavun. All rights reserved.

/*
Package apperr defines the centralized error handling framework for Mavun.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Identity: Every error code doubles as an "urn:mvn:error:{code}" identifier on the wire.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mavun/mavun/pkg/urn"
)

// AppError is the canonical error type for the Mavun API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// TypeURN renders the error code as its canonical "urn:mvn:error:{code}"
// identifier for the response envelope. Codes are compile-time constants of
// this package, so construction cannot fail at runtime.
func (e *AppError) TypeURN() string {
	errorURN, err := urn.NewError(strings.ToLower(e.Code))
	if err != nil {
		return ""
	}
	return errorURN.String()
}

// # Constructors

func newAppError(code string, status int, msg string) *AppError {
	return &AppError{Code: code, Message: msg, HTTPStatus: status}
}

// NotFound creates a 404 [AppError]; the message is "{resource} not found".
func NotFound(resource string) *AppError {
	return newAppError("NOT_FOUND", http.StatusNotFound, resource+" not found")
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return newAppError("UNAUTHORIZED", http.StatusUnauthorized, msg)
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return newAppError("FORBIDDEN", http.StatusForbidden, msg)
}

// Conflict creates a 409 [AppError] for unique-constraint violations.
func Conflict(msg string) *AppError {
	return newAppError("CONFLICT", http.StatusConflict, msg)
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	appErr := newAppError("VALIDATION_ERROR", http.StatusBadRequest, msg)
	appErr.Details = details
	return appErr
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return newAppError("RATE_LIMITED", http.StatusTooManyRequests,
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds))
}

// Unprocessable creates a 422 [AppError] for semantically invalid input.
func Unprocessable(msg string) *AppError {
	return newAppError("UNPROCESSABLE", http.StatusUnprocessableEntity, msg)
}

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is kept for logging; clients only ever see the generic message.
func Internal(cause error) *AppError {
	appErr := newAppError("INTERNAL_ERROR", http.StatusInternalServerError,
		"An unexpected error occurred")
	appErr.Cause = cause
	return appErr
}

// ServiceUnavailable creates a 503 [AppError] for degraded dependencies.
func ServiceUnavailable(msg string) *AppError {
	return newAppError("SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, msg)
}

// # URN Bridge

// urnKindCodes maps identifier validation failures onto wire-level codes.
// All URN failures are caller-input errors and therefore 400-class.
var urnKindCodes = map[urn.Kind]string{
	urn.KindMalformed:        "MALFORMED_URN",
	urn.KindUnknownNamespace: "UNKNOWN_NAMESPACE",
	urn.KindUnknownType:      "UNKNOWN_TYPE",
	urn.KindInvalidComponent: "INVALID_COMPONENT",
	urn.KindTooLong:          "URN_TOO_LONG",
	urn.KindEmpty:            "EMPTY_COMPONENT",
	urn.KindNotApplicable:    "NOT_APPLICABLE",
}

// FromURN converts a [*urn.Error] into a client-facing 400 [AppError].
// Errors not produced by the urn package become internal errors.
func FromURN(err error) *AppError {
	kind := urn.KindOf(err)
	code, ok := urnKindCodes[kind]
	if !ok {
		return Internal(err)
	}
	return &AppError{
		Code:       code,
		Message:    err.Error(),
		HTTPStatus: http.StatusBadRequest,
		Cause:      err,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
