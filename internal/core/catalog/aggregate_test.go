// Copyright (c) 2026 Mavun. All rights reserved.

package catalog

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavun/mavun/pkg/urn"
)

/*
TestRecompute_TagUnion verifies exact-match string-set union across units.

 1. Seed the series with ["Action", "Drama"].
 2. Contribute ["Action", "Comedy"] from a unit.
 3. Expect ["Action", "Drama", "Comedy"] in first-seen order, no duplicate.
*/
func TestRecompute_TagUnion(t *testing.T) {
	series := &Series{
		ID:    urn.New(urn.TypeSeries),
		Title: "Testament",
		Tags:  []string{"Action", "Drama"},
	}
	unit := &Unit{
		ID:       urn.New(urn.TypeUnit),
		SeriesID: series.ID,
		Tags:     []string{"Action", "Comedy"},
	}

	merged := Recompute(series, []*Unit{unit})

	assert.Equal(t, []string{"Action", "Drama", "Comedy"}, merged.Tags)
}

/*
TestRecompute_TagsAreCaseSensitive confirms no case folding happens: two tags
differing only by case are distinct set members.
*/
func TestRecompute_TagsAreCaseSensitive(t *testing.T) {
	series := &Series{ID: urn.New(urn.TypeSeries), Tags: []string{"Sci-Fi"}}
	unit := &Unit{ID: urn.New(urn.TypeUnit), Tags: []string{"sci-fi"}}

	merged := Recompute(series, []*Unit{unit})

	assert.Equal(t, []string{"Sci-Fi", "sci-fi"}, merged.Tags)
}

/*
TestRecompute_ContentWarningUnion checks warnings union independently of tags.
*/
func TestRecompute_ContentWarningUnion(t *testing.T) {
	series := &Series{ID: urn.New(urn.TypeSeries), ContentWarnings: []string{"Gore"}}
	units := []*Unit{
		{ID: urn.New(urn.TypeUnit), ContentWarnings: []string{"Gore", "Violence"}},
		{ID: urn.New(urn.TypeUnit), ContentWarnings: []string{"Spoilers"}},
	}

	merged := Recompute(series, units)

	assert.Equal(t, []string{"Gore", "Violence", "Spoilers"}, merged.ContentWarnings)
}

/*
TestRecompute_AuthorMergeByID exercises the keyed credit merge:

 1. Same id twice merges into one entry, position first-seen.
 2. A later non-empty role overrides an earlier empty one.
 3. Same display name under different ids stays two entries.
*/
func TestRecompute_AuthorMergeByID(t *testing.T) {
	series := &Series{
		ID:      urn.New(urn.TypeSeries),
		Authors: []Credit{{ID: "auth-1", Name: "Kaoru Mori"}},
	}
	units := []*Unit{
		{ID: urn.New(urn.TypeUnit), Authors: []Credit{{ID: "auth-1", Name: "Kaoru Mori", Role: "story"}}},
		{ID: urn.New(urn.TypeUnit), Authors: []Credit{{ID: "auth-2", Name: "Kaoru Mori", Role: "art"}}},
	}

	merged := Recompute(series, units)

	require.Len(t, merged.Authors, 2)
	assert.Equal(t, Credit{ID: "auth-1", Name: "Kaoru Mori", Role: "story"}, merged.Authors[0])
	assert.Equal(t, Credit{ID: "auth-2", Name: "Kaoru Mori", Role: "art"}, merged.Authors[1])
}

/*
TestRecompute_EmptyRoleNeverErases verifies that a later contribution with an
empty role does not wipe a role already established for that credit.
*/
func TestRecompute_EmptyRoleNeverErases(t *testing.T) {
	series := &Series{
		ID:      urn.New(urn.TypeSeries),
		Authors: []Credit{{ID: "auth-1", Name: "Inio Asano", Role: "story & art"}},
	}
	unit := &Unit{ID: urn.New(urn.TypeUnit), Authors: []Credit{{ID: "auth-1", Name: "Inio Asano"}}}

	merged := Recompute(series, []*Unit{unit})

	require.Len(t, merged.Authors, 1)
	assert.Equal(t, "story & art", merged.Authors[0].Role)
}

/*
TestRecompute_LocalizedScanlators covers per-language scanlator union:

 1. Contributions for a language the series already localizes union in.
 2. Contributions for an unseen language create that language block.
 3. Existing block fields other than scanlators are untouched.
*/
func TestRecompute_LocalizedScanlators(t *testing.T) {
	series := &Series{
		ID: urn.New(urn.TypeSeries),
		Localized: map[string]LocalizedSeries{
			"en": {Title: "Witch Hat", Scanlators: []Credit{{ID: "grp-1", Name: "Moonlight"}}},
		},
	}
	units := []*Unit{
		{
			ID: urn.New(urn.TypeUnit),
			Localized: map[string]LocalizedUnit{
				"en": {Scanlators: []Credit{{ID: "grp-2", Name: "Daybreak"}}},
				"fr": {Scanlators: []Credit{{ID: "grp-3", Name: "Lueur"}}},
			},
		},
	}

	merged := Recompute(series, units)

	require.Contains(t, merged.Localized, "en")
	require.Contains(t, merged.Localized, "fr")
	assert.Equal(t, "Witch Hat", merged.Localized["en"].Title)
	assert.Equal(t,
		[]Credit{{ID: "grp-1", Name: "Moonlight"}, {ID: "grp-2", Name: "Daybreak"}},
		merged.Localized["en"].Scanlators)
	assert.Equal(t, []Credit{{ID: "grp-3", Name: "Lueur"}}, merged.Localized["fr"].Scanlators)
	assert.Empty(t, merged.Localized["fr"].Title)
}

/*
TestRecompute_Idempotent runs the aggregator over its own output and requires
a deeply identical result.
*/
func TestRecompute_Idempotent(t *testing.T) {
	series := &Series{
		ID:              urn.New(urn.TypeSeries),
		Title:           "Testament",
		Tags:            []string{"Action"},
		ContentWarnings: []string{"Gore"},
		Authors:         []Credit{{ID: "auth-1", Name: "A"}},
		Localized: map[string]LocalizedSeries{
			"en": {Scanlators: []Credit{{ID: "grp-1", Name: "Moonlight"}}},
		},
	}
	units := []*Unit{
		{
			ID:      urn.New(urn.TypeUnit),
			Tags:    []string{"Comedy", "Action"},
			Authors: []Credit{{ID: "auth-1", Role: "story"}, {ID: "auth-2", Name: "B"}},
			Localized: map[string]LocalizedUnit{
				"vi": {Scanlators: []Credit{{ID: "grp-2", Name: "Trang"}}},
			},
		},
	}

	once := Recompute(series, units)
	twice := Recompute(once, units)

	assert.True(t, reflect.DeepEqual(once, twice), "second pass must not change the result")
}

/*
TestRecompute_DoesNotMutateInputs confirms purity: neither the series nor the
units are modified by aggregation.
*/
func TestRecompute_DoesNotMutateInputs(t *testing.T) {
	series := &Series{
		ID:   urn.New(urn.TypeSeries),
		Tags: []string{"Action"},
	}
	unit := &Unit{ID: urn.New(urn.TypeUnit), Tags: []string{"Comedy"}}

	before := series.Clone()
	_ = Recompute(series, []*Unit{unit})

	assert.True(t, reflect.DeepEqual(before, series), "series input must stay untouched")
	assert.Equal(t, []string{"Comedy"}, unit.Tags)
}

/*
TestRecompute_NoUnits verifies the degenerate case: aggregation with zero
units is a deep copy of the curated series.
*/
func TestRecompute_NoUnits(t *testing.T) {
	series := &Series{
		ID:   urn.New(urn.TypeSeries),
		Tags: []string{"Action"},
	}

	merged := Recompute(series, nil)

	assert.Equal(t, series.Tags, merged.Tags)
	assert.NotSame(t, series, merged)
}

func TestSeries_LocalizedOrDefault(t *testing.T) {
	series := &Series{
		Title:       "Default Title",
		Description: "Default description",
		Localized: map[string]LocalizedSeries{
			"fr": {Title: "Titre"},
		},
	}

	resolved := series.LocalizedOrDefault("fr")
	assert.Equal(t, "Titre", resolved.Title)
	assert.Equal(t, "Default description", resolved.Description)

	fallback := series.LocalizedOrDefault("de")
	assert.Equal(t, "Default Title", fallback.Title)
}
