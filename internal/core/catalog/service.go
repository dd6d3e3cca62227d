// Copyright (c) 2026 Mavun. All rights reserved.

package catalog

import (
	"context"
	"log/slog"

	"github.com/mavun/mavun/internal/platform/validate"
	"github.com/mavun/mavun/pkg/keylock"
	"github.com/mavun/mavun/pkg/urn"
)

// # Service Layer

// Service orchestrates the business logic for the Mavun catalogue.
//
// Every unit mutation re-runs metadata aggregation for the parent series
// under a per-series lock, so concurrent writers interleave cleanly and no
// unit contribution is ever lost to a read-modify-write race.
type Service struct {
	seriesRepo SeriesRepository
	unitRepo   UnitRepository
	locks      *keylock.KeyedMutex
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its required repositories.
func NewService(seriesRepo SeriesRepository, unitRepo UnitRepository, locks *keylock.KeyedMutex, logger *slog.Logger) *Service {
	return &Service{
		seriesRepo: seriesRepo,
		unitRepo:   unitRepo,
		locks:      locks,
		logger:     logger,
	}
}

// # Series Lookups

/*
ListSeries retrieves a paginated and filtered collection of series.

Parameters:
  - context: context.Context
  - filter: Filter (Criteria for search, tags, language)
  - limit: int (Max records to return)
  - offset: int (Pagination cursor)

Returns:
  - []*Series: Slice of matching series records
  - int: Total count matching the filter (for pagination metadata)
  - error: System or repository level errors
*/
func (service *Service) ListSeries(context context.Context, filter Filter, limit, offset int) ([]*Series, int, error) {
	return service.seriesRepo.List(context, filter, limit, offset)
}

/*
GetSeries fetches a single series by URN.

Parameters:
  - context: context.Context
  - id: urn.URN ("urn:mvn:series:...")

Returns:
  - *Series: The hydrated domain entity
  - error: apperr.NotFound if no match is found
*/
func (service *Service) GetSeries(context context.Context, id urn.URN) (*Series, error) {
	return service.seriesRepo.FindByID(context, id)
}

// # Series Management

/*
CreateSeries initialises a new series record in the system.

Description: Performs business validation on the metadata, mints a stable
"urn:mvn:series" identity, and persists the curated baseline. No aggregation
runs at creation time since a fresh series has no units.

Parameters:
  - context: context.Context
  - s: *Series (The entity to be persisted; CreatedBy must be set)

Returns:
  - error: Validation or persistence errors
*/
func (service *Service) CreateSeries(context context.Context, series *Series) error {

	// Business attribute validation
	validator := &validate.Validator{}
	validator.Required(FieldTitle, series.Title).MaxLen(FieldTitle, series.Title, 500)
	validator.URNOfType(FieldCreatedBy, series.CreatedBy.String(), urn.TypeUser)

	// Localized keys must be valid language tags
	for lang := range series.Localized {
		validator.Language(FieldLocalized, lang)
	}

	// Federation references must carry the source namespace
	for _, source := range series.Sources {
		validator.Custom(FieldSources, source.Namespace() != urn.NamespaceSrc,
			"Must be a federation (urn:src) identifier")
	}

	if err := validator.Err(); err != nil {
		return err
	}

	// Identity minting
	if series.ID.IsZero() {
		series.ID = urn.New(urn.TypeSeries)
	}

	service.logger.Info("series created",
		slog.String("series_urn", series.ID.String()),
		slog.String("created_by", series.CreatedBy.String()),
	)

	return service.seriesRepo.Create(context, series)
}

/*
UpdateSeries applies curated modifications to an existing series.

Description: Runs under the per-series lock, and finishes with a full
aggregation pass so curated edits and unit contributions land in a single
consistent snapshot. Non-empty descriptive fields overwrite existing values;
curated set fields replace the aggregation seed.

Parameters:
  - context: context.Context
  - s: *Series (Updated attributes; ID addresses the target)

Returns:
  - *Series: The freshly aggregated state after the update
  - error: Validation, not-found, or persistence errors
*/
func (service *Service) UpdateSeries(context context.Context, series *Series) (*Series, error) {

	validator := &validate.Validator{}
	validator.URNOfType(FieldID, series.ID.String(), urn.TypeSeries)
	if series.Title != "" {
		validator.MaxLen(FieldTitle, series.Title, 500)
	}
	for lang := range series.Localized {
		validator.Language(FieldLocalized, lang)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	unlock := service.locks.Lock(series.ID.String())
	defer unlock()

	current, err := service.seriesRepo.FindByID(context, series.ID)
	if err != nil {
		return nil, err
	}

	applySeriesPatch(current, series)

	return service.recomputeLocked(context, current)
}

/*
DeleteSeries removes a series and is expected to be invoked only after its
units have been removed or migrated by the caller.

Parameters:
  - context: context.Context
  - id: urn.URN

Returns:
  - error: apperr.NotFound if the series does not exist
*/
func (service *Service) DeleteSeries(context context.Context, id urn.URN) error {

	unlock := service.locks.Lock(id.String())
	defer unlock()

	if err := service.seriesRepo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Info("series deleted", slog.String("series_urn", id.String()))
	return nil
}

// # Unit Lookups

/*
ListUnits returns every unit of a series ordered by unit number.
*/
func (service *Service) ListUnits(context context.Context, seriesID urn.URN) ([]*Unit, error) {
	return service.unitRepo.ListBySeries(context, seriesID)
}

/*
GetUnit fetches a single unit by URN.
*/
func (service *Service) GetUnit(context context.Context, id urn.URN) (*Unit, error) {
	return service.unitRepo.FindByID(context, id)
}

// # Unit Management

/*
CreateUnit persists a new child unit and folds its metadata contributions
into the parent series.

Description: The unit insert and the parent re-aggregation run under the
parent's lock, so two uploads landing at once both see each other's
contributions in the final series state.

Parameters:
  - context: context.Context
  - u: *Unit (SeriesID and CreatedBy must be set)

Returns:
  - *Series: The freshly aggregated parent state
  - error: Validation, not-found, or persistence errors
*/
func (service *Service) CreateUnit(context context.Context, unit *Unit) (*Series, error) {

	validator := &validate.Validator{}
	validator.URNOfType("series_id", unit.SeriesID.String(), urn.TypeSeries)
	validator.URNOfType(FieldCreatedBy, unit.CreatedBy.String(), urn.TypeUser)
	validator.Custom("number", unit.Number < 0, "Must not be negative")
	for lang := range unit.Localized {
		validator.Language(FieldLocalized, lang)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	unlock := service.locks.Lock(unit.SeriesID.String())
	defer unlock()

	// Parent existence gate before minting the child identity
	series, err := service.seriesRepo.FindByID(context, unit.SeriesID)
	if err != nil {
		return nil, err
	}

	if unit.ID.IsZero() {
		unit.ID = urn.New(urn.TypeUnit)
	}

	if err := service.unitRepo.Create(context, unit); err != nil {
		return nil, err
	}

	service.logger.Info("unit created",
		slog.String("unit_urn", unit.ID.String()),
		slog.String("series_urn", unit.SeriesID.String()),
	)

	return service.recomputeLocked(context, series)
}

/*
UpdateUnit applies modifications to an existing unit and re-aggregates the
parent series.

Parameters:
  - context: context.Context
  - u: *Unit (Updated attributes; ID addresses the target)

Returns:
  - *Series: The freshly aggregated parent state
  - error: Validation, not-found, or persistence errors
*/
func (service *Service) UpdateUnit(context context.Context, unit *Unit) (*Series, error) {

	validator := &validate.Validator{}
	validator.URNOfType(FieldID, unit.ID.String(), urn.TypeUnit)
	for lang := range unit.Localized {
		validator.Language(FieldLocalized, lang)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Resolve the parent before locking; the parent reference is immutable.
	current, err := service.unitRepo.FindByID(context, unit.ID)
	if err != nil {
		return nil, err
	}

	unlock := service.locks.Lock(current.SeriesID.String())
	defer unlock()

	applyUnitPatch(current, unit)

	if err := service.unitRepo.Update(context, current); err != nil {
		return nil, err
	}

	series, err := service.seriesRepo.FindByID(context, current.SeriesID)
	if err != nil {
		return nil, err
	}

	return service.recomputeLocked(context, series)
}

/*
DeleteUnit removes a unit and re-aggregates the parent.

Description: The aggregator is monotonic over its inputs, so contributions
the deleted unit made to string sets and credits remain in the parent until
a curator explicitly prunes them. Only future contributions stop.

Parameters:
  - context: context.Context
  - id: urn.URN

Returns:
  - *Series: The parent state after re-aggregation
  - error: apperr.NotFound if the unit does not exist
*/
func (service *Service) DeleteUnit(context context.Context, id urn.URN) (*Series, error) {

	unit, err := service.unitRepo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	unlock := service.locks.Lock(unit.SeriesID.String())
	defer unlock()

	if err := service.unitRepo.Delete(context, id); err != nil {
		return nil, err
	}

	service.logger.Info("unit deleted",
		slog.String("unit_urn", id.String()),
		slog.String("series_urn", unit.SeriesID.String()),
	)

	series, err := service.seriesRepo.FindByID(context, unit.SeriesID)
	if err != nil {
		return nil, err
	}

	return service.recomputeLocked(context, series)
}

/*
RecomputeSeries forces a full aggregation pass over a series. Exposed for
curation tooling and repair jobs; functionally a no-op when state is already
consistent.
*/
func (service *Service) RecomputeSeries(context context.Context, id urn.URN) (*Series, error) {

	unlock := service.locks.Lock(id.String())
	defer unlock()

	series, err := service.seriesRepo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	return service.recomputeLocked(context, series)
}

// # Aggregation Trigger

// recomputeLocked reads the full unit list, runs aggregation, and persists
// the merged snapshot. The caller must hold the series lock.
func (service *Service) recomputeLocked(context context.Context, series *Series) (*Series, error) {

	units, err := service.unitRepo.ListBySeries(context, series.ID)
	if err != nil {
		return nil, err
	}

	merged := Recompute(series, units)

	if err := service.seriesRepo.Update(context, merged); err != nil {
		return nil, err
	}

	service.logger.Debug("series aggregated",
		slog.String("series_urn", series.ID.String()),
		slog.Int("unit_count", len(units)),
	)

	return merged, nil
}

// # Patch Application

// applySeriesPatch folds non-zero curated fields of patch into target.
// Set-valued fields replace the aggregation seed wholesale when provided.
func applySeriesPatch(target, patch *Series) {
	if patch.Title != "" {
		target.Title = patch.Title
	}
	if patch.Description != "" {
		target.Description = patch.Description
	}
	if patch.PosterURL != "" {
		target.PosterURL = patch.PosterURL
	}
	if patch.Tags != nil {
		target.Tags = patch.Tags
	}
	if patch.ContentWarnings != nil {
		target.ContentWarnings = patch.ContentWarnings
	}
	if patch.Authors != nil {
		target.Authors = patch.Authors
	}
	if patch.Scanlators != nil {
		target.Scanlators = patch.Scanlators
	}
	if patch.Groups != nil {
		target.Groups = patch.Groups
	}
	if patch.Localized != nil {
		target.Localized = patch.Localized
	}
	if patch.Sources != nil {
		target.Sources = patch.Sources
	}
}

// applyUnitPatch folds non-zero fields of patch into target. The parent
// reference, identity, and editor set never move through this path.
func applyUnitPatch(target, patch *Unit) {
	if patch.Title != "" {
		target.Title = patch.Title
	}
	if patch.Number != 0 {
		target.Number = patch.Number
	}
	if patch.Tags != nil {
		target.Tags = patch.Tags
	}
	if patch.ContentWarnings != nil {
		target.ContentWarnings = patch.ContentWarnings
	}
	if patch.Authors != nil {
		target.Authors = patch.Authors
	}
	if patch.Scanlators != nil {
		target.Scanlators = patch.Scanlators
	}
	if patch.Localized != nil {
		target.Localized = patch.Localized
	}
	if patch.Sources != nil {
		target.Sources = patch.Sources
	}
}
