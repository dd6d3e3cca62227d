// Copyright (c) 2026 Mavun. All rights reserved.

package urn

import "fmt"

// # Error Classification

// Kind classifies a URN validation failure into a machine-readable category.
//
// Every error produced by this package carries exactly one Kind. Callers at
// the API boundary map these onto client-facing error responses; the kinds
// themselves never leak storage or transport details.
type Kind int

const (
	// KindMalformed indicates a wrong segment count or a missing "urn" prefix.
	KindMalformed Kind = iota + 1

	// KindUnknownNamespace indicates a namespace other than "mvn" or "src".
	KindUnknownNamespace

	// KindUnknownType indicates an "mvn" resource type outside the whitelist.
	KindUnknownType

	// KindInvalidComponent indicates illegal characters in an id, source, or code.
	KindInvalidComponent

	// KindTooLong indicates a serialized URN over 512 chars or a component over 256.
	KindTooLong

	// KindEmpty indicates a required component is missing.
	KindEmpty

	// KindNotApplicable indicates a projection that does not exist for the
	// namespace (e.g. asking a "src" URN for its resource type).
	KindNotApplicable
)

// String returns the stable machine-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindMalformed:
		return "malformed_urn"
	case KindUnknownNamespace:
		return "unknown_namespace"
	case KindUnknownType:
		return "unknown_type"
	case KindInvalidComponent:
		return "invalid_component"
	case KindTooLong:
		return "too_long"
	case KindEmpty:
		return "empty_component"
	case KindNotApplicable:
		return "not_applicable"
	}
	return "unknown"
}

// Error is the concrete error type returned by all URN operations.
//
// It pairs a [Kind] with a human-readable reason. Use [KindOf] or
// [errors.As] to branch on the category.
type Error struct {
	// Kind is the validation failure category.
	Kind Kind

	// Reason is a human-readable description of the failure.
	Reason string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("urn: %s: %s", e.Kind, e.Reason)
}

// newError constructs an [*Error] with a formatted reason.
func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// KindOf returns the [Kind] carried by err, or 0 if err was not produced by
// this package.
func KindOf(err error) Kind {
	if urnError, ok := err.(*Error); ok {
		return urnError.Kind
	}
	return 0
}
