// Copyright (c) 2026 Mavun. All rights reserved.

/*
Package catalog defines the core domain entities of the Mavun catalogue.

It manages the lifecycle of serialised publications (Series) and their child
units (chapters/episodes), including descriptive metadata, per-language
overlays, federation identifiers, and the delegated-editor sets consumed by
the permission resolver.

Core Responsibility:

  - Identity: Every entity is addressed exclusively by its URN.
  - Discovery: Tags, content warnings, and credited authors/scanlators.
  - Aggregation: Rolls child-unit metadata up into the parent series view.

This package acts as the source of truth for all content-related data models.
*/
package catalog

import (
	"time"

	"github.com/mavun/mavun/pkg/urn"
)

// # Core Entities

// Credit identifies a contributing entity (author, scanlator, group).
//
// Credits are keyed by ID, never by display name: two credits with the same
// name but different ids are distinct entities, while two entries sharing an
// id describe the same entity and are merged during aggregation.
type Credit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// LocalizedSeries holds the per-language overrides layered onto a [Series].
//
// Presence is per whole block: a language either has an override entry or it
// does not. Individual empty fields inside a present block fall back to the
// series defaults at read time (see [Series.LocalizedOrDefault]).
type LocalizedSeries struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	PosterURL   string   `json:"poster_url,omitempty"`
	Scanlators  []Credit `json:"scanlators,omitempty"`
}

// Series is the central aggregate of the Mavun catalogue: a top-level entry
// whose displayed metadata is the union of its own curated values and the
// contributions of all child [Unit] records.
type Series struct {
	// ID is the immutable "urn:mvn:series:{id}" identity.
	ID urn.URN `json:"id"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	PosterURL   string `json:"poster_url,omitempty"`

	// Aggregated fields. Seeded by curation, extended by unit contributions;
	// periodically overwritten by Recompute.
	Tags            []string `json:"tags,omitempty"`
	ContentWarnings []string `json:"content_warnings,omitempty"`
	Authors         []Credit `json:"authors,omitempty"`
	Scanlators      []Credit `json:"scanlators,omitempty"`
	Groups          []Credit `json:"groups,omitempty"`

	// Localized maps ISO-639-1 / BCP-47 tags to per-language overrides.
	Localized map[string]LocalizedSeries `json:"localized,omitempty"`

	// Sources lists federation identifiers ("urn:src:...") for imported records.
	Sources []urn.URN `json:"sources,omitempty"`

	// CreatedBy is the owner. Set once at creation; reassigned only by an
	// explicit ownership transfer outside this core.
	CreatedBy urn.URN `json:"created_by"`

	// AllowedEditors is the delegated edit set maintained by the permission
	// resolver. Never mutated without the per-target lock.
	AllowedEditors []urn.URN `json:"allowed_editors,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Owner returns the owning user URN.
func (s *Series) Owner() urn.URN { return s.CreatedBy }

// HasEditor reports whether user is in the delegated editor set.
func (s *Series) HasEditor(user urn.URN) bool {
	for _, editor := range s.AllowedEditors {
		if editor == user {
			return true
		}
	}
	return false
}

// LocalizedOrDefault resolves the effective per-language view: fields absent
// from the language block fall back to the series defaults.
func (s *Series) LocalizedOrDefault(lang string) LocalizedSeries {
	resolved := LocalizedSeries{
		Title:       s.Title,
		Description: s.Description,
		PosterURL:   s.PosterURL,
		Scanlators:  s.Scanlators,
	}

	block, ok := s.Localized[lang]
	if !ok {
		return resolved
	}

	if block.Title != "" {
		resolved.Title = block.Title
	}
	if block.Description != "" {
		resolved.Description = block.Description
	}
	if block.PosterURL != "" {
		resolved.PosterURL = block.PosterURL
	}
	if len(block.Scanlators) > 0 {
		resolved.Scanlators = block.Scanlators
	}
	return resolved
}

// Clone returns a deep copy. The aggregator relies on this to stay pure:
// it never mutates the series it is handed.
func (s *Series) Clone() *Series {
	cloned := *s
	cloned.Tags = append([]string(nil), s.Tags...)
	cloned.ContentWarnings = append([]string(nil), s.ContentWarnings...)
	cloned.Authors = append([]Credit(nil), s.Authors...)
	cloned.Scanlators = append([]Credit(nil), s.Scanlators...)
	cloned.Groups = append([]Credit(nil), s.Groups...)
	cloned.Sources = append([]urn.URN(nil), s.Sources...)
	cloned.AllowedEditors = append([]urn.URN(nil), s.AllowedEditors...)

	if s.Localized != nil {
		cloned.Localized = make(map[string]LocalizedSeries, len(s.Localized))
		for lang, block := range s.Localized {
			block.Scanlators = append([]Credit(nil), block.Scanlators...)
			cloned.Localized[lang] = block
		}
	}
	return &cloned
}

// # Field Identifiers

// Global field names for validation and dynamic query mapping.
const (
	FieldID              = "id"
	FieldTitle           = "title"
	FieldDescription     = "description"
	FieldPosterURL       = "poster_url"
	FieldTags            = "tags"
	FieldContentWarnings = "content_warnings"
	FieldAuthors         = "authors"
	FieldScanlators      = "scanlators"
	FieldGroups          = "groups"
	FieldLocalized       = "localized"
	FieldSources         = "sources"
	FieldCreatedBy       = "created_by"
	FieldLanguage        = "language"
)
