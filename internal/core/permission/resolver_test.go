// Copyright (c) 2026 Mavun. All rights reserved.

package permission

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavun/mavun/internal/platform/apperr"
	"github.com/mavun/mavun/pkg/keylock"
	"github.com/mavun/mavun/pkg/urn"
)

// # Fake Target Store

type fakeTargetStore struct {
	mu      sync.Mutex
	targets map[urn.URN]*Target
}

func newFakeTargetStore(targets ...*Target) *fakeTargetStore {
	store := &fakeTargetStore{targets: make(map[urn.URN]*Target)}
	for _, target := range targets {
		store.targets[target.URN] = target
	}
	return store
}

func (store *fakeTargetStore) Load(_ context.Context, target urn.URN) (*Target, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	loaded, ok := store.targets[target]
	if !ok {
		return nil, apperr.NotFound("target")
	}
	clone := *loaded
	clone.Editors = append([]urn.URN(nil), loaded.Editors...)
	return &clone, nil
}

func (store *fakeTargetStore) SaveEditors(_ context.Context, target urn.URN, editors []urn.URN) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	loaded, ok := store.targets[target]
	if !ok {
		return apperr.NotFound("target")
	}
	loaded.Editors = append([]urn.URN(nil), editors...)
	return nil
}

// # Harness

func newTestResolver(targets ...*Target) *Resolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(newFakeTargetStore(targets...), keylock.New(), logger)
}

// # Tests

/*
TestResolver_OwnerAlwaysAuthorized verifies rule precedence: the owner has
edit rights even with an empty editor set.
*/
func TestResolver_OwnerAlwaysAuthorized(t *testing.T) {
	owner := urn.New(urn.TypeUser)
	stranger := urn.New(urn.TypeUser)
	series := &Target{URN: urn.New(urn.TypeSeries), Owner: owner}
	resolver := newTestResolver(series)

	allowed, err := resolver.IsAuthorized(context.Background(), series.URN, owner)
	require.NoError(t, err)
	assert.True(t, allowed)

	denied, err := resolver.IsAuthorized(context.Background(), series.URN, stranger)
	require.NoError(t, err)
	assert.False(t, denied, "denial must be an answer, not an error")
}

/*
TestResolver_ParentOwnerCascade covers the series-owner cascade over units:

 1. The series owner may edit a unit uploaded by someone else.
 2. The unit uploader may edit their own unit.
 3. The uploader of one unit has no rights on a sibling unit.
*/
func TestResolver_ParentOwnerCascade(t *testing.T) {
	seriesOwner := urn.New(urn.TypeUser)
	uploaderOne := urn.New(urn.TypeUser)
	uploaderTwo := urn.New(urn.TypeUser)

	unitOne := &Target{URN: urn.New(urn.TypeUnit), Owner: uploaderOne, ParentOwner: seriesOwner}
	unitTwo := &Target{URN: urn.New(urn.TypeUnit), Owner: uploaderTwo, ParentOwner: seriesOwner}
	resolver := newTestResolver(unitOne, unitTwo)

	tests := []struct {
		name    string
		target  urn.URN
		user    urn.URN
		allowed bool
	}{
		{"series owner edits unit one", unitOne.URN, seriesOwner, true},
		{"series owner edits unit two", unitTwo.URN, seriesOwner, true},
		{"uploader edits own unit", unitOne.URN, uploaderOne, true},
		{"uploader denied on sibling unit", unitTwo.URN, uploaderOne, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			allowed, err := resolver.IsAuthorized(context.Background(), tc.target, tc.user)
			require.NoError(t, err)
			assert.Equal(t, tc.allowed, allowed)
		})
	}
}

/*
TestResolver_GrantIdempotent grants the same editor twice and expects a
single membership.
*/
func TestResolver_GrantIdempotent(t *testing.T) {
	owner := urn.New(urn.TypeUser)
	editor := urn.New(urn.TypeUser)
	series := &Target{URN: urn.New(urn.TypeSeries), Owner: owner}
	resolver := newTestResolver(series)

	first, err := resolver.Grant(context.Background(), series.URN, editor, owner)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := resolver.Grant(context.Background(), series.URN, editor, owner)
	require.NoError(t, err)
	assert.Len(t, second, 1)

	allowed, err := resolver.IsAuthorized(context.Background(), series.URN, editor)
	require.NoError(t, err)
	assert.True(t, allowed)
}

/*
TestResolver_RevokeIdempotent revokes an editor twice; the second call is a
no-op, and the user loses edit rights while the owner keeps them.
*/
func TestResolver_RevokeIdempotent(t *testing.T) {
	owner := urn.New(urn.TypeUser)
	editor := urn.New(urn.TypeUser)
	series := &Target{URN: urn.New(urn.TypeSeries), Owner: owner, Editors: []urn.URN{editor}}
	resolver := newTestResolver(series)

	after, err := resolver.Revoke(context.Background(), series.URN, editor)
	require.NoError(t, err)
	assert.Empty(t, after)

	again, err := resolver.Revoke(context.Background(), series.URN, editor)
	require.NoError(t, err)
	assert.Empty(t, again)

	allowed, err := resolver.IsAuthorized(context.Background(), series.URN, editor)
	require.NoError(t, err)
	assert.False(t, allowed)

	ownerAllowed, err := resolver.IsAuthorized(context.Background(), series.URN, owner)
	require.NoError(t, err)
	assert.True(t, ownerAllowed, "revocation must never strip ownership rights")
}

/*
TestResolver_ConcurrentGrants fires 100 distinct grants at the same target in
parallel. The per-target lock must serialize the read-modify-write cycles so
all 100 editors survive.
*/
func TestResolver_ConcurrentGrants(t *testing.T) {
	owner := urn.New(urn.TypeUser)
	series := &Target{URN: urn.New(urn.TypeSeries), Owner: owner}
	resolver := newTestResolver(series)

	const grants = 100
	var wg sync.WaitGroup
	wg.Add(grants)

	for i := 0; i < grants; i++ {
		go func() {
			defer wg.Done()
			_, err := resolver.Grant(context.Background(), series.URN, urn.New(urn.TypeUser), owner)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	editors, err := resolver.List(context.Background(), series.URN)
	require.NoError(t, err)
	assert.Len(t, editors, grants)
}

/*
TestResolver_RejectsWrongSubjects checks input validation: non-catalogue
targets and non-user subjects are errors, not silent denials.
*/
func TestResolver_RejectsWrongSubjects(t *testing.T) {
	owner := urn.New(urn.TypeUser)
	series := &Target{URN: urn.New(urn.TypeSeries), Owner: owner}
	resolver := newTestResolver(series)

	_, err := resolver.IsAuthorized(context.Background(), urn.New(urn.TypeComment), owner)
	require.Error(t, err)

	_, err = resolver.IsAuthorized(context.Background(), series.URN, urn.New(urn.TypeTag))
	require.Error(t, err)

	_, err = resolver.Grant(context.Background(), urn.New(urn.TypeAsset), owner, owner)
	require.Error(t, err)
}

/*
TestResolver_UnknownTarget surfaces NotFound for grants and lookups against
targets that do not exist.
*/
func TestResolver_UnknownTarget(t *testing.T) {
	resolver := newTestResolver()
	user := urn.New(urn.TypeUser)

	_, err := resolver.Grant(context.Background(), urn.New(urn.TypeSeries), user, user)
	require.Error(t, err)

	_, err = resolver.IsAuthorized(context.Background(), urn.New(urn.TypeUnit), user)
	require.Error(t, err)
}
