// Copyright (c) 2026 Mavun. All rights reserved.

package urn_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavun/mavun/pkg/urn"
)

// canonicalIDPattern matches the 8-4-4-4-12 lower-case hex rendering used by
// generated native URNs.
var canonicalIDPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

/*
TestURN_New verifies generated native URNs are canonical and round-trip safe.
*/
func TestURN_New(t *testing.T) {
	generated := urn.New(urn.TypeSeries)

	// 1. Canonical identifier shape
	assert.Equal(t, urn.NamespaceMvn, generated.Namespace())
	assert.Regexp(t, canonicalIDPattern, generated.ID())

	kind, err := generated.Type()
	require.NoError(t, err)
	assert.Equal(t, urn.TypeSeries, kind)

	// 2. Round-trip: Parse(u.String()) yields an equal value
	parsed, err := urn.Parse(generated.String())
	require.NoError(t, err)
	assert.Equal(t, generated, parsed)

	// 3. Two generations never collide
	assert.NotEqual(t, generated, urn.New(urn.TypeSeries))
}

/*
TestURN_Parse_CaseInsensitive verifies that scheme, namespace, and type
compare case-insensitively and canonicalize to lower-case.
*/
func TestURN_Parse_CaseInsensitive(t *testing.T) {
	upper, err := urn.Parse("URN:MVN:SERIES:123")
	require.NoError(t, err)

	lower, err := urn.Parse("urn:mvn:series:123")
	require.NoError(t, err)

	assert.Equal(t, lower, upper)
	assert.Equal(t, "urn:mvn:series:123", upper.String())
}

/*
TestURN_Parse_Rejections exercises every validation failure category.
*/
func TestURN_Parse_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  urn.Kind
	}{
		{"not_a_urn", "not-a-urn", urn.KindMalformed},
		{"wrong_prefix", "nrn:mvn:series:123", urn.KindMalformed},
		{"too_few_segments", "urn:mvn", urn.KindMalformed},
		{"mvn_missing_id_segment", "urn:mvn:series", urn.KindMalformed},
		{"src_missing_id_segment", "urn:src:mangadex", urn.KindMalformed},
		{"unknown_namespace", "urn:isbn:series:123", urn.KindUnknownNamespace},
		{"unknown_type", "urn:mvn:unknown:1", urn.KindUnknownType},
		{"mvn_id_illegal_chars", "urn:mvn:series:abc def", urn.KindInvalidComponent},
		{"mvn_id_embedded_colon", "urn:mvn:series:abc:def", urn.KindInvalidComponent},
		{"src_source_illegal_chars", "urn:src:bad source:id", urn.KindInvalidComponent},
		{"mvn_empty_id", "urn:mvn:series:", urn.KindEmpty},
		{"src_empty_id", "urn:src:mangadex:", urn.KindEmpty},
		{"input_over_512", "urn:mvn:series:" + strings.Repeat("a", 600), urn.KindTooLong},
		{"src_id_over_256", "urn:src:ext:" + strings.Repeat("a", 300), urn.KindTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := urn.Parse(tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.kind, urn.KindOf(err))
		})
	}
}

/*
TestURN_Parse_SourceColons verifies that colons after the third segment are
preserved verbatim as part of a federated id.
*/
func TestURN_Parse_SourceColons(t *testing.T) {
	parsed, err := urn.Parse("urn:src:external:item:with:colons")
	require.NoError(t, err)

	assert.Equal(t, urn.NamespaceSrc, parsed.Namespace())
	assert.Equal(t, "item:with:colons", parsed.ID())

	source, err := parsed.Source()
	require.NoError(t, err)
	assert.Equal(t, "external", source)

	// Source URNs have no resource type taxonomy
	_, err = parsed.Type()
	assert.Equal(t, urn.KindNotApplicable, urn.KindOf(err))

	// Round-trip keeps the embedded delimiters intact
	assert.Equal(t, "urn:src:external:item:with:colons", parsed.String())
}

/*
TestURN_NewError validates error-code URN construction.
*/
func TestURN_NewError(t *testing.T) {
	tests := []struct {
		name string
		code string
		kind urn.Kind // 0 means success
		want string
	}{
		{"simple_code", "not-found", 0, "urn:mvn:error:not-found"},
		{"lowercased", "Not-Found", 0, "urn:mvn:error:not-found"},
		{"empty", "", urn.KindEmpty, ""},
		{"illegal_chars", "not found!", urn.KindInvalidComponent, ""},
		{"over_256", strings.Repeat("x", 300), urn.KindTooLong, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			built, err := urn.NewError(tt.code)
			if tt.kind != 0 {
				assert.Equal(t, tt.kind, urn.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, built.String())
		})
	}
}

/*
TestURN_NewSource validates federated URN construction.
*/
func TestURN_NewSource(t *testing.T) {
	built, err := urn.NewSource("MangaDex", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "urn:src:mangadex:abc123", built.String())

	// Verbatim ids may carry delimiters
	built, err = urn.NewSource("external", "item:with:colons")
	require.NoError(t, err)
	assert.Equal(t, "urn:src:external:item:with:colons", built.String())

	_, err = urn.NewSource("", "abc")
	assert.Equal(t, urn.KindEmpty, urn.KindOf(err))

	_, err = urn.NewSource("bad source", "abc")
	assert.Equal(t, urn.KindInvalidComponent, urn.KindOf(err))

	_, err = urn.NewSource("ext", "")
	assert.Equal(t, urn.KindEmpty, urn.KindOf(err))

	_, err = urn.NewSource("ext", strings.Repeat("a", 300))
	assert.Equal(t, urn.KindTooLong, urn.KindOf(err))
}

/*
TestURN_TryFamily verifies the non-failing wrappers never propagate errors.
*/
func TestURN_TryFamily(t *testing.T) {
	parsed, ok := urn.TryParse("urn:mvn:unit:abc")
	assert.True(t, ok)
	assert.True(t, parsed.IsType(urn.TypeUnit))

	_, ok = urn.TryParse("urn:mvn:unknown:abc")
	assert.False(t, ok)

	assert.True(t, urn.IsValid("urn:src:mangadex:abc"))
	assert.False(t, urn.IsValid("garbage"))

	assert.True(t, urn.IsValidOfType("urn:mvn:user:abc", urn.TypeUser))
	assert.False(t, urn.IsValidOfType("urn:mvn:user:abc", urn.TypeSeries))
	assert.False(t, urn.IsValidOfType("urn:src:mangadex:abc", urn.TypeSeries))
}

/*
TestURN_Projections verifies the text-level id/type extraction helpers.
*/
func TestURN_Projections(t *testing.T) {
	id, err := urn.ExtractID("urn:mvn:series:abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)

	kind, err := urn.ExtractType("urn:mvn:series:abc123")
	require.NoError(t, err)
	assert.Equal(t, urn.TypeSeries, kind)

	_, err = urn.ExtractType("urn:src:mangadex:abc123")
	assert.Equal(t, urn.KindNotApplicable, urn.KindOf(err))

	_, err = urn.ExtractID("not-a-urn")
	assert.Equal(t, urn.KindMalformed, urn.KindOf(err))
}

/*
TestURN_TextMarshalling verifies JSON/jsonb round-trips via encoding.TextMarshaler.
*/
func TestURN_TextMarshalling(t *testing.T) {
	original := urn.New(urn.TypeSeries)

	text, err := original.MarshalText()
	require.NoError(t, err)

	var decoded urn.URN
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, original, decoded)

	// Empty text decodes to the zero value
	var zero urn.URN
	require.NoError(t, zero.UnmarshalText(nil))
	assert.True(t, zero.IsZero())
}
