// Copyright (c) 2026 Mavun. All rights reserved.

// Package validate provides a chainable Validator that collects field-level
// failures and reports them as one [apperr.AppError]. Validation lives in the
// service layer only; handlers decode, services validate, stores trust.
package validate

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/mavun/mavun/internal/platform/apperr"
	"github.com/mavun/mavun/pkg/urn"
)

// ErrInvalidJSON is returned when the request body cannot be decoded.
var ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Range fails if the value is outside the [min, max] range (inclusive).
func (v *Validator) Range(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.add(field, fmt.Sprintf("Must be between %d and %d", min, max))
	}
	return v
}

// URN fails if the value is not a well-formed URN of any namespace.
func (v *Validator) URN(field, value string) *Validator {
	if !urn.IsValid(value) {
		v.add(field, "Must be a valid URN")
	}
	return v
}

// URNOfType fails if the value is not a well-formed native URN of the
// expected resource type.
func (v *Validator) URNOfType(field, value string, expected urn.Type) *Validator {
	if !urn.IsValidOfType(value, expected) {
		v.add(field, fmt.Sprintf("Must be a valid %s URN", expected))
	}
	return v
}

// Language fails if the value is not a well-formed BCP-47 / ISO-639-1 language
// tag. Localized metadata maps are keyed by these tags.
func (v *Validator) Language(field, value string) *Validator {
	if _, err := language.Parse(value); err != nil {
		v.add(field, "Must be a valid language code")
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	if !slices.Contains(allowed, value) {
		v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("number", number < 0, "Must not be negative")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns an [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method — call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}
