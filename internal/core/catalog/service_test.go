// Copyright (c) 2026 Mavun. All rights reserved.

package catalog

import (
	"context"
	"fmt"
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

// # In-Memory Fakes

type fakeSeriesRepo struct {
	mu     sync.Mutex
	series map[urn.URN]*Series
}

func newFakeSeriesRepo() *fakeSeriesRepo {
	return &fakeSeriesRepo{series: make(map[urn.URN]*Series)}
}

func (r *fakeSeriesRepo) List(_ context.Context, _ Filter, _, _ int) ([]*Series, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Series
	for _, s := range r.series {
		out = append(out, s.Clone())
	}
	return out, len(out), nil
}

func (r *fakeSeriesRepo) FindByID(_ context.Context, id urn.URN) (*Series, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.series[id]
	if !ok {
		return nil, apperr.NotFound("series")
	}
	return s.Clone(), nil
}

func (r *fakeSeriesRepo) Create(_ context.Context, s *Series) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.series[s.ID] = s.Clone()
	return nil
}

func (r *fakeSeriesRepo) Update(_ context.Context, s *Series) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.series[s.ID]; !ok {
		return apperr.NotFound("series")
	}
	r.series[s.ID] = s.Clone()
	return nil
}

func (r *fakeSeriesRepo) UpdateEditors(_ context.Context, id urn.URN, editors []urn.URN) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.series[id]
	if !ok {
		return apperr.NotFound("series")
	}
	s.AllowedEditors = append([]urn.URN(nil), editors...)
	return nil
}

func (r *fakeSeriesRepo) Delete(_ context.Context, id urn.URN) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.series[id]; !ok {
		return apperr.NotFound("series")
	}
	delete(r.series, id)
	return nil
}

type fakeUnitRepo struct {
	mu    sync.Mutex
	units map[urn.URN]*Unit
	order []urn.URN
}

func newFakeUnitRepo() *fakeUnitRepo {
	return &fakeUnitRepo{units: make(map[urn.URN]*Unit)}
}

func (r *fakeUnitRepo) ListBySeries(_ context.Context, seriesID urn.URN) ([]*Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Unit
	for _, id := range r.order {
		if u, ok := r.units[id]; ok && u.SeriesID == seriesID {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeUnitRepo) FindByID(_ context.Context, id urn.URN) (*Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[id]
	if !ok {
		return nil, apperr.NotFound("unit")
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUnitRepo) Create(_ context.Context, u *Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *u
	r.units[u.ID] = &clone
	r.order = append(r.order, u.ID)
	return nil
}

func (r *fakeUnitRepo) Update(_ context.Context, u *Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.units[u.ID]; !ok {
		return apperr.NotFound("unit")
	}
	clone := *u
	r.units[u.ID] = &clone
	return nil
}

func (r *fakeUnitRepo) UpdateEditors(_ context.Context, id urn.URN, editors []urn.URN) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[id]
	if !ok {
		return apperr.NotFound("unit")
	}
	u.AllowedEditors = append([]urn.URN(nil), editors...)
	return nil
}

func (r *fakeUnitRepo) Delete(_ context.Context, id urn.URN) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.units[id]; !ok {
		return apperr.NotFound("unit")
	}
	delete(r.units, id)
	return nil
}

// # Harness

func newTestService() (*Service, *fakeSeriesRepo, *fakeUnitRepo) {
	seriesRepo := newFakeSeriesRepo()
	unitRepo := newFakeUnitRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(seriesRepo, unitRepo, keylock.New(), logger), seriesRepo, unitRepo
}

func seedSeries(t *testing.T, service *Service, owner urn.URN) *Series {
	t.Helper()
	series := &Series{
		Title:     "Seeded",
		Tags:      []string{"Action"},
		CreatedBy: owner,
	}
	require.NoError(t, service.CreateSeries(context.Background(), series))
	return series
}

// # Tests

/*
TestService_CreateSeries_MintsIdentity verifies that creating a series without
an id mints a native series URN and persists the record.
*/
func TestService_CreateSeries_MintsIdentity(t *testing.T) {
	service, seriesRepo, _ := newTestService()
	owner := urn.New(urn.TypeUser)

	series := seedSeries(t, service, owner)

	assert.True(t, series.ID.IsType(urn.TypeSeries))
	stored, err := seriesRepo.FindByID(context.Background(), series.ID)
	require.NoError(t, err)
	assert.Equal(t, "Seeded", stored.Title)
}

/*
TestService_CreateSeries_Validation rejects a missing title, a non-user
creator, and malformed localized language keys.
*/
func TestService_CreateSeries_Validation(t *testing.T) {
	service, _, _ := newTestService()

	tests := []struct {
		name   string
		series *Series
	}{
		{"missing title", &Series{CreatedBy: urn.New(urn.TypeUser)}},
		{"creator is not a user", &Series{Title: "X", CreatedBy: urn.New(urn.TypeSeries)}},
		{"bad localized key", &Series{
			Title:     "X",
			CreatedBy: urn.New(urn.TypeUser),
			Localized: map[string]LocalizedSeries{"not a language!!": {}},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := service.CreateSeries(context.Background(), tc.series)
			require.Error(t, err)
			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
}

/*
TestService_CreateUnit_AggregatesParent checks the write path end to end:

 1. Create a unit carrying new tags and an author.
 2. The returned parent snapshot contains the union.
 3. The persisted parent matches the returned snapshot.
*/
func TestService_CreateUnit_AggregatesParent(t *testing.T) {
	service, seriesRepo, _ := newTestService()
	owner := urn.New(urn.TypeUser)
	series := seedSeries(t, service, owner)

	merged, err := service.CreateUnit(context.Background(), &Unit{
		SeriesID:  series.ID,
		CreatedBy: owner,
		Number:    1,
		Tags:      []string{"Comedy"},
		Authors:   []Credit{{ID: "auth-1", Name: "A", Role: "story"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Action", "Comedy"}, merged.Tags)
	require.Len(t, merged.Authors, 1)

	stored, err := seriesRepo.FindByID(context.Background(), series.ID)
	require.NoError(t, err)
	assert.Equal(t, merged.Tags, stored.Tags)
}

/*
TestService_CreateUnit_UnknownParent rejects a unit pointing at a series that
does not exist, before any identity is minted.
*/
func TestService_CreateUnit_UnknownParent(t *testing.T) {
	service, _, unitRepo := newTestService()

	_, err := service.CreateUnit(context.Background(), &Unit{
		SeriesID:  urn.New(urn.TypeSeries),
		CreatedBy: urn.New(urn.TypeUser),
	})
	require.Error(t, err)
	assert.Empty(t, unitRepo.order)
}

/*
TestService_ConcurrentUnitCreates runs many unit creations against the same
series in parallel and requires every contribution to survive in the final
aggregated state.
*/
func TestService_ConcurrentUnitCreates(t *testing.T) {
	service, seriesRepo, _ := newTestService()
	owner := urn.New(urn.TypeUser)
	series := seedSeries(t, service, owner)

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)

	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := service.CreateUnit(context.Background(), &Unit{
				SeriesID:  series.ID,
				CreatedBy: owner,
				Number:    float64(i + 1),
				Tags:      []string{fmt.Sprintf("tag-%03d", i)},
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := seriesRepo.FindByID(context.Background(), series.ID)
	require.NoError(t, err)

	// Seed tag plus one unique tag per writer.
	assert.Len(t, stored.Tags, writers+1)
}

/*
TestService_UpdateUnit_Reaggregates verifies that editing a unit's tags folds
the new values into the parent.
*/
func TestService_UpdateUnit_Reaggregates(t *testing.T) {
	service, _, _ := newTestService()
	owner := urn.New(urn.TypeUser)
	series := seedSeries(t, service, owner)

	merged, err := service.CreateUnit(context.Background(), &Unit{
		SeriesID:  series.ID,
		CreatedBy: owner,
		Tags:      []string{"Comedy"},
	})
	require.NoError(t, err)

	units, err := service.ListUnits(context.Background(), series.ID)
	require.NoError(t, err)
	require.Len(t, units, 1)

	merged, err = service.UpdateUnit(context.Background(), &Unit{
		ID:   units[0].ID,
		Tags: []string{"Comedy", "Horror"},
	})
	require.NoError(t, err)

	assert.Contains(t, merged.Tags, "Horror")
}

/*
TestService_DeleteUnit_KeepsContributions confirms the monotonic behaviour:
deleting a unit does not retract the tags it already contributed.
*/
func TestService_DeleteUnit_KeepsContributions(t *testing.T) {
	service, _, _ := newTestService()
	owner := urn.New(urn.TypeUser)
	series := seedSeries(t, service, owner)

	_, err := service.CreateUnit(context.Background(), &Unit{
		SeriesID:  series.ID,
		CreatedBy: owner,
		Tags:      []string{"Comedy"},
	})
	require.NoError(t, err)

	units, err := service.ListUnits(context.Background(), series.ID)
	require.NoError(t, err)
	require.Len(t, units, 1)

	merged, err := service.DeleteUnit(context.Background(), units[0].ID)
	require.NoError(t, err)

	assert.Contains(t, merged.Tags, "Comedy")

	remaining, err := service.ListUnits(context.Background(), series.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

/*
TestService_UpdateSeries_PatchAndAggregate applies a curated patch and checks
the result reflects both the patch and the unit contributions.
*/
func TestService_UpdateSeries_PatchAndAggregate(t *testing.T) {
	service, _, _ := newTestService()
	owner := urn.New(urn.TypeUser)
	series := seedSeries(t, service, owner)

	_, err := service.CreateUnit(context.Background(), &Unit{
		SeriesID:  series.ID,
		CreatedBy: owner,
		Tags:      []string{"Comedy"},
	})
	require.NoError(t, err)

	merged, err := service.UpdateSeries(context.Background(), &Series{
		ID:    series.ID,
		Title: "Renamed",
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", merged.Title)
	assert.Equal(t, []string{"Action", "Comedy"}, merged.Tags)
}

/*
TestService_RecomputeSeries_Idempotent runs the explicit repair pass twice and
expects identical output.
*/
func TestService_RecomputeSeries_Idempotent(t *testing.T) {
	service, _, _ := newTestService()
	owner := urn.New(urn.TypeUser)
	series := seedSeries(t, service, owner)

	_, err := service.CreateUnit(context.Background(), &Unit{
		SeriesID:  series.ID,
		CreatedBy: owner,
		Tags:      []string{"Comedy"},
	})
	require.NoError(t, err)

	first, err := service.RecomputeSeries(context.Background(), series.ID)
	require.NoError(t, err)
	second, err := service.RecomputeSeries(context.Background(), series.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Tags, second.Tags)
	assert.Equal(t, first.Authors, second.Authors)
}
