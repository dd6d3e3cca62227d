// Copyright (c) 2026 Mavun. All rights reserved.

package catalog

// # Metadata Aggregation
//
// Recompute rolls unit contributions up into the parent series. The function
// is pure: it reads its inputs, mutates neither, and returns a fresh copy.
// Running it twice over its own output produces an identical result, so the
// service is free to re-trigger it after every unit mutation without
// coordination beyond the per-series lock.
//
// Union semantics:
//
//   - Tags and content warnings are exact-match string sets. No case folding,
//     no trimming, no synonym mapping: "Sci-Fi" and "sci-fi" are distinct.
//   - Authors and scanlators are keyed by Credit.ID. A later contribution for
//     a known id fills in or overrides the Name/Role fields when non-empty,
//     but never reorders or duplicates the entry.
//   - Per-language scanlators union into the matching language block of the
//     series, creating the block when the series has none for that language.
//
// Ordering is deterministic: series-curated values first, then unit
// contributions in the order the units are supplied.

// Recompute returns a new Series whose aggregated fields are the union of the
// series' own curated values and the contributions of every supplied unit.
func Recompute(series *Series, units []*Unit) *Series {
	merged := series.Clone()

	tags := newStringSet(series.Tags)
	warnings := newStringSet(series.ContentWarnings)
	authors := newCreditSet(series.Authors)
	scanlators := newCreditSet(series.Scanlators)

	localized := make(map[string]*creditSet, len(series.Localized))
	for lang, block := range series.Localized {
		localized[lang] = newCreditSet(block.Scanlators)
	}

	for _, unit := range units {
		tags.addAll(unit.Tags)
		warnings.addAll(unit.ContentWarnings)
		authors.mergeAll(unit.Authors)
		scanlators.mergeAll(unit.Scanlators)

		for lang, block := range unit.Localized {
			set, ok := localized[lang]
			if !ok {
				set = newCreditSet(nil)
				localized[lang] = set
			}
			set.mergeAll(block.Scanlators)
		}
	}

	merged.Tags = tags.values()
	merged.ContentWarnings = warnings.values()
	merged.Authors = authors.values()
	merged.Scanlators = scanlators.values()

	for lang, set := range localized {
		credits := set.values()
		if len(credits) == 0 {
			continue
		}
		if merged.Localized == nil {
			merged.Localized = make(map[string]LocalizedSeries)
		}
		block := merged.Localized[lang]
		block.Scanlators = credits
		merged.Localized[lang] = block
	}

	return merged
}

// # Ordered Sets
//
// Both set types preserve first-seen insertion order so aggregation output is
// stable across runs regardless of map iteration order elsewhere.

type stringSet struct {
	index map[string]struct{}
	items []string
}

func newStringSet(seed []string) *stringSet {
	set := &stringSet{index: make(map[string]struct{}, len(seed))}
	set.addAll(seed)
	return set
}

func (set *stringSet) addAll(values []string) {
	for _, value := range values {
		if value == "" {
			continue
		}
		if _, seen := set.index[value]; seen {
			continue
		}
		set.index[value] = struct{}{}
		set.items = append(set.items, value)
	}
}

func (set *stringSet) values() []string { return set.items }

type creditSet struct {
	index map[string]int
	items []Credit
}

func newCreditSet(seed []Credit) *creditSet {
	set := &creditSet{index: make(map[string]int, len(seed))}
	set.mergeAll(seed)
	return set
}

func (set *creditSet) mergeAll(credits []Credit) {
	for _, credit := range credits {
		set.merge(credit)
	}
}

func (set *creditSet) merge(credit Credit) {
	if credit.ID == "" {
		return
	}
	if at, seen := set.index[credit.ID]; seen {
		// Later non-empty fields win, position stays first-seen.
		if credit.Name != "" {
			set.items[at].Name = credit.Name
		}
		if credit.Role != "" {
			set.items[at].Role = credit.Role
		}
		return
	}
	set.index[credit.ID] = len(set.items)
	set.items = append(set.items, credit)
}

func (set *creditSet) values() []Credit { return set.items }
