// Copyright (c) 2026 Mavun. All rights reserved.

package permission

import (
	"context"

	"github.com/mavun/mavun/internal/core/catalog"
	"github.com/mavun/mavun/pkg/urn"
)

// # Catalogue-Backed Target Store

// catalogStore adapts the catalogue repositories to the [TargetStore]
// contract, dispatching on the target's resource type.
type catalogStore struct {
	seriesRepo catalog.SeriesRepository
	unitRepo   catalog.UnitRepository
}

// NewCatalogStore constructs a [TargetStore] over the catalogue repositories.
func NewCatalogStore(seriesRepo catalog.SeriesRepository, unitRepo catalog.UnitRepository) TargetStore {
	return &catalogStore{
		seriesRepo: seriesRepo,
		unitRepo:   unitRepo,
	}
}

// Load resolves the permission projection of a series or unit. Unit targets
// additionally resolve the parent series to populate the ownership cascade.
func (store *catalogStore) Load(context context.Context, target urn.URN) (*Target, error) {

	if target.IsType(urn.TypeSeries) {
		series, err := store.seriesRepo.FindByID(context, target)
		if err != nil {
			return nil, err
		}
		return &Target{
			URN:     series.ID,
			Owner:   series.CreatedBy,
			Editors: series.AllowedEditors,
		}, nil
	}

	unit, err := store.unitRepo.FindByID(context, target)
	if err != nil {
		return nil, err
	}

	series, err := store.seriesRepo.FindByID(context, unit.SeriesID)
	if err != nil {
		return nil, err
	}

	return &Target{
		URN:         unit.ID,
		Owner:       unit.CreatedBy,
		ParentOwner: series.CreatedBy,
		Editors:     unit.AllowedEditors,
	}, nil
}

// SaveEditors persists a replaced editor set to the owning repository.
func (store *catalogStore) SaveEditors(context context.Context, target urn.URN, editors []urn.URN) error {
	if target.IsType(urn.TypeSeries) {
		return store.seriesRepo.UpdateEditors(context, target, editors)
	}
	return store.unitRepo.UpdateEditors(context, target, editors)
}
