// Copyright (c) 2026 Mavun. All rights reserved.

package catalog

import (
	"time"

	"github.com/mavun/mavun/pkg/urn"
)

// # Child Units

// LocalizedUnit holds the per-language overrides layered onto a [Unit].
type LocalizedUnit struct {
	Title      string   `json:"title,omitempty"`
	Scanlators []Credit `json:"scanlators,omitempty"`
}

// Unit is a child release of a [Series]: a chapter, episode, or volume.
//
// Units contribute their tags, content warnings, and credits to the parent
// series through aggregation, and may carry their own delegated editor set
// for unit-scoped corrections.
type Unit struct {
	// ID is the immutable "urn:mvn:unit:{id}" identity.
	ID urn.URN `json:"id"`

	// SeriesID is the owning parent. A unit never changes parent.
	SeriesID urn.URN `json:"series_id"`

	Title string `json:"title,omitempty"`

	// Number orders units within their series. Fractional numbers are
	// permitted for interstitial releases (e.g. 10.5).
	Number float64 `json:"number"`

	Tags            []string `json:"tags,omitempty"`
	ContentWarnings []string `json:"content_warnings,omitempty"`
	Authors         []Credit `json:"authors,omitempty"`
	Scanlators      []Credit `json:"scanlators,omitempty"`

	Localized map[string]LocalizedUnit `json:"localized,omitempty"`

	Sources []urn.URN `json:"sources,omitempty"`

	// CreatedBy is the uploader and unit-level owner.
	CreatedBy urn.URN `json:"created_by"`

	AllowedEditors []urn.URN `json:"allowed_editors,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Owner returns the unit-level owning user URN. Ownership of the parent
// series cascades over this for authorization purposes.
func (u *Unit) Owner() urn.URN { return u.CreatedBy }

// HasEditor reports whether user is in the unit's delegated editor set.
func (u *Unit) HasEditor(user urn.URN) bool {
	for _, editor := range u.AllowedEditors {
		if editor == user {
			return true
		}
	}
	return false
}

// EffectiveTags resolves the tags shown for a unit: its own when present,
// otherwise the parent's aggregated set.
func (u *Unit) EffectiveTags(parent *Series) []string {
	if len(u.Tags) > 0 {
		return u.Tags
	}
	return parent.Tags
}

// EffectiveContentWarnings resolves the content warnings shown for a unit.
func (u *Unit) EffectiveContentWarnings(parent *Series) []string {
	if len(u.ContentWarnings) > 0 {
		return u.ContentWarnings
	}
	return parent.ContentWarnings
}

// EffectiveAuthors resolves the credited authors shown for a unit.
func (u *Unit) EffectiveAuthors(parent *Series) []Credit {
	if len(u.Authors) > 0 {
		return u.Authors
	}
	return parent.Authors
}
