// Copyright (c) 2026 Mavun. All rights reserved.

/*
Package urn implements the canonical resource identifier scheme of the Mavun
platform.

Every resource in the system — series, units, users, assets, even error codes —
is addressed by a URN of the form:

	urn:{namespace}:{type-or-source}:{id}

Two namespaces exist:

  - mvn: native resources. The third segment is a resource type drawn from a
    fixed whitelist; the id is an opaque token of [a-zA-Z0-9_-].
  - src: federated resources imported from external systems. The third segment
    names the source system; the id is stored verbatim and may itself contain
    the ':' delimiter (e.g. "urn:src:external:item:with:colons").

Namespaces and types compare case-insensitively; the canonical stored form is
always lower-case. A serialized URN is capped at 512 characters (checked before
any other processing) purely to bound worst-case parse cost.

Values of [URN] are immutable and comparable, making them safe map keys and
safe to share between goroutines without coordination.
*/
package urn

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// # Namespaces & Types

// Namespace identifies which identifier scheme a URN belongs to.
type Namespace string

const (
	// NamespaceMvn is the native namespace for platform-owned resources.
	NamespaceMvn Namespace = "mvn"

	// NamespaceSrc is the federation namespace for imported resources.
	NamespaceSrc Namespace = "src"
)

// Type is the resource kind of a native (mvn) URN.
type Type string

const (
	TypeSeries     Type = "series"
	TypeUnit       Type = "unit"
	TypeUser       Type = "user"
	TypeAsset      Type = "asset"
	TypeComment    Type = "comment"
	TypeError      Type = "error"
	TypeCollection Type = "collection"
	TypeTag        Type = "tag"
	TypeAnnotation Type = "annotation"
	TypeSession    Type = "session"
)

// # Validation Constants

const (
	// MaxLength is the cap on a fully serialized URN.
	MaxLength = 512

	// MaxComponentLength is the cap on a single id/source/code component.
	MaxComponentLength = 256

	// delimiter separates URN segments.
	delimiter = ":"

	// scheme is the mandatory first segment of every URN.
	scheme = "urn"
)

// Immutable validation tables, initialized once at process start.
var (
	// validTypes is the whitelist of recognised mvn resource types.
	validTypes = map[Type]struct{}{
		TypeSeries:     {},
		TypeUnit:       {},
		TypeUser:       {},
		TypeAsset:      {},
		TypeComment:    {},
		TypeError:      {},
		TypeCollection: {},
		TypeTag:        {},
		TypeAnnotation: {},
		TypeSession:    {},
	}

	// componentPattern matches a legal id, source name, or error code.
	componentPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// # URN Value

// URN is an immutable, comparable resource identifier.
//
// The zero value is not a valid URN; use the constructors or [Parse].
type URN struct {
	namespace Namespace
	kind      string // resource type for mvn, source system for src
	id        string
}

// Namespace returns the URN's namespace.
func (u URN) Namespace() Namespace { return u.namespace }

// ID returns the URN's opaque identifier component.
func (u URN) ID() string { return u.id }

// Type returns the resource type of a native URN.
//
// Source URNs have no fixed type taxonomy, so it fails with
// [KindNotApplicable] when the namespace is "src".
func (u URN) Type() (Type, error) {
	if u.namespace != NamespaceMvn {
		return "", newError(KindNotApplicable, "namespace %q has no resource type", u.namespace)
	}
	return Type(u.kind), nil
}

// Source returns the source-system name of a federated URN.
//
// It fails with [KindNotApplicable] when the namespace is "mvn".
func (u URN) Source() (string, error) {
	if u.namespace != NamespaceSrc {
		return "", newError(KindNotApplicable, "namespace %q has no source system", u.namespace)
	}
	return u.kind, nil
}

// IsType reports whether u is a native URN of the given resource type.
func (u URN) IsType(t Type) bool {
	return u.namespace == NamespaceMvn && u.kind == string(t)
}

// IsZero reports whether u is the zero value.
func (u URN) IsZero() bool {
	return u == URN{}
}

// String serializes the URN in its canonical form.
func (u URN) String() string {
	if u.IsZero() {
		return ""
	}
	return scheme + delimiter + string(u.namespace) + delimiter + u.kind + delimiter + u.id
}

// MarshalText implements [encoding.TextMarshaler] so URNs serialize as plain
// strings in JSON payloads and jsonb columns.
func (u URN) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (u *URN) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*u = URN{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// # Constructors

// New generates a fresh native URN of the given type.
//
// The identifier is a random 128-bit value rendered in canonical lower-case
// hyphenated hex groups (8-4-4-4-12).
//
// # Safety
//
// New panics if t is not in the type whitelist. Callers pass compile-time
// constants, so a miss is a programmer error, never client input.
func New(t Type) URN {
	if _, ok := validTypes[t]; !ok {
		panic("urn: unknown resource type " + string(t))
	}
	return URN{
		namespace: NamespaceMvn,
		kind:      string(t),
		id:        uuid.New().String(),
	}
}

// NewError builds an error-code URN of the form "urn:mvn:error:{code}".
//
// The code is lower-cased before embedding. It fails with [KindEmpty],
// [KindTooLong], or [KindInvalidComponent] on bad input.
func NewError(code string) (URN, error) {
	if code == "" {
		return URN{}, newError(KindEmpty, "error code is required")
	}
	if len(code) > MaxComponentLength {
		return URN{}, newError(KindTooLong, "error code exceeds %d characters", MaxComponentLength)
	}
	code = strings.ToLower(code)
	if !componentPattern.MatchString(code) {
		return URN{}, newError(KindInvalidComponent, "error code %q contains illegal characters", code)
	}
	return URN{namespace: NamespaceMvn, kind: string(TypeError), id: code}, nil
}

// NewSource builds a federated URN of the form "urn:src:{source}:{id}".
//
// The source name is lower-cased; the id is stored verbatim and may contain
// the ':' delimiter. The composed URN must stay within [MaxLength] and the id
// within [MaxComponentLength] so that the value always survives a round-trip
// through [Parse].
func NewSource(source, id string) (URN, error) {
	if source == "" {
		return URN{}, newError(KindEmpty, "source system is required")
	}
	source = strings.ToLower(source)
	if !componentPattern.MatchString(source) {
		return URN{}, newError(KindInvalidComponent, "source %q contains illegal characters", source)
	}
	if id == "" {
		return URN{}, newError(KindEmpty, "source id is required")
	}
	if len(id) > MaxComponentLength {
		return URN{}, newError(KindTooLong, "source id exceeds %d characters", MaxComponentLength)
	}

	composed := URN{namespace: NamespaceSrc, kind: source, id: id}
	if len(composed.String()) > MaxLength {
		return URN{}, newError(KindTooLong, "serialized URN exceeds %d characters", MaxLength)
	}
	return composed, nil
}

// # Parsing

// Parse validates text and returns its canonical [URN] value.
//
// The 512-character cap is enforced before any other processing to bound the
// worst-case parse cost of hostile input.
func Parse(text string) (URN, error) {
	if len(text) > MaxLength {
		return URN{}, newError(KindTooLong, "input exceeds %d characters", MaxLength)
	}

	segments := strings.Split(text, delimiter)
	if len(segments) < 3 {
		return URN{}, newError(KindMalformed, "expected at least 3 segments, got %d", len(segments))
	}
	if !strings.EqualFold(segments[0], scheme) {
		return URN{}, newError(KindMalformed, "missing %q prefix", scheme)
	}

	switch Namespace(strings.ToLower(segments[1])) {
	case NamespaceMvn:
		return parseNative(segments)
	case NamespaceSrc:
		return parseSource(segments)
	}
	return URN{}, newError(KindUnknownNamespace, "unknown namespace %q", segments[1])
}

// parseNative validates the mvn segments: a whitelisted type followed by a
// single opaque id component.
func parseNative(segments []string) (URN, error) {
	if len(segments) < 4 {
		return URN{}, newError(KindMalformed, "mvn URN requires 4 segments")
	}

	kind := Type(strings.ToLower(segments[2]))
	if _, ok := validTypes[kind]; !ok {
		return URN{}, newError(KindUnknownType, "unknown resource type %q", segments[2])
	}

	// Trailing segments rejoin so that illegal embedded delimiters surface as
	// an id validation failure rather than a silent truncation.
	id := strings.Join(segments[3:], delimiter)
	if id == "" {
		return URN{}, newError(KindEmpty, "resource id is required")
	}
	if len(id) > MaxComponentLength {
		return URN{}, newError(KindTooLong, "resource id exceeds %d characters", MaxComponentLength)
	}
	if !componentPattern.MatchString(id) {
		return URN{}, newError(KindInvalidComponent, "resource id %q contains illegal characters", id)
	}

	return URN{namespace: NamespaceMvn, kind: string(kind), id: id}, nil
}

// parseSource validates the src segments: a source-system name followed by a
// verbatim id in which delimiters are preserved.
func parseSource(segments []string) (URN, error) {
	if len(segments) < 4 {
		return URN{}, newError(KindMalformed, "src URN requires 4 segments")
	}

	source := strings.ToLower(segments[2])
	if source == "" {
		return URN{}, newError(KindEmpty, "source system is required")
	}
	if !componentPattern.MatchString(source) {
		return URN{}, newError(KindInvalidComponent, "source %q contains illegal characters", source)
	}

	id := strings.Join(segments[3:], delimiter)
	if id == "" {
		return URN{}, newError(KindEmpty, "source id is required")
	}
	if len(id) > MaxComponentLength {
		return URN{}, newError(KindTooLong, "source id exceeds %d characters", MaxComponentLength)
	}

	return URN{namespace: NamespaceSrc, kind: source, id: id}, nil
}

// # Non-failing Variants

// TryParse parses text and reports success without propagating the error.
func TryParse(text string) (URN, bool) {
	parsed, err := Parse(text)
	return parsed, err == nil
}

// IsValid reports whether text is a well-formed URN of any namespace.
func IsValid(text string) bool {
	_, ok := TryParse(text)
	return ok
}

// IsValidOfType reports whether text is a well-formed native URN of the
// expected resource type.
func IsValidOfType(text string, expected Type) bool {
	parsed, ok := TryParse(text)
	return ok && parsed.IsType(expected)
}

// # Projections

// ExtractID parses text and returns only its id component.
func ExtractID(text string) (string, error) {
	parsed, err := Parse(text)
	if err != nil {
		return "", err
	}
	return parsed.ID(), nil
}

// ExtractType parses text and returns its resource type.
//
// It fails with [KindNotApplicable] for src URNs.
func ExtractType(text string) (Type, error) {
	parsed, err := Parse(text)
	if err != nil {
		return "", err
	}
	return parsed.Type()
}
