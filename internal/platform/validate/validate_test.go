// Copyright (c) 2026 Mavun. All rights reserved.

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavun/mavun/internal/platform/apperr"
	"github.com/mavun/mavun/internal/platform/validate"
	"github.com/mavun/mavun/pkg/urn"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "title", "Mavun", false},
		{"empty_string", "title", "", true},
		{"whitespace_only", "title", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_URN checks URN well-formedness and typed-URN rules.
*/
func TestValidator_URN(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"native_urn", "urn:mvn:series:abc123", true},
		{"federated_urn", "urn:src:mangadex:ext:1", true},
		{"garbage", "not-a-urn", false},
		{"unknown_type", "urn:mvn:unknown:1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.URN("target", tt.value)

			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}

	// Typed rule rejects a well-formed URN of the wrong type
	v := &validate.Validator{}
	v.URNOfType("user", "urn:mvn:series:abc", urn.TypeUser)
	assert.True(t, v.HasErrors())
}

/*
TestValidator_Language checks the localized-key language tag rule.
*/
func TestValidator_Language(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		isValid bool
	}{
		{"iso639_1", "en", true},
		{"regioned", "pt-BR", true},
		{"three_letter", "vie", true},
		{"empty", "", false},
		{"garbage", "english!!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Language("language", tt.tag)

			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("title", "Solo Camping").
		MinLen("title", "Solo Camping", 3).
		MaxLen("title", "Solo Camping", 500).
		Language("language", "ja").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("title", "").               // Fails
		URN("target", "not-a-urn").          // Fails
		Language("language", "not a lang!"). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors
	assert.Len(t, ae.Details, 3)
}
