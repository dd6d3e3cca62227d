// Copyright (c) 2026 Mavun. All rights reserved.

package catalog

import (
	"context"

	"github.com/mavun/mavun/pkg/urn"
)

// # Catalogue Data Access

// Filter narrows series listings.
type Filter struct {
	Query    string
	Tags     []string
	Language string
	Sort     string
	SortDir  string
}

// SeriesRepository defines the data access contract for series.
type SeriesRepository interface {

	/*
		List returns a filtered, paginated slice of series and the total count.

		Parameters:
		  - context: context.Context
		  - f: Filter (search, tags, sorting)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Series: List of hydrated series
		  - int: Total matching series
		  - error: Storage failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Series, int, error)

	/*
		FindByID returns the series with the given URN.

		Parameters:
		  - context: context.Context
		  - id: urn.URN ("urn:mvn:series:...")

		Returns:
		  - *Series: Hydrated metadata
		  - error: apperr.NotFound if missing
	*/
	FindByID(context context.Context, id urn.URN) (*Series, error)

	/*
		Create persists a new series to the store.

		Parameters:
		  - context: context.Context
		  - s: *Series

		Returns:
		  - error: Storage failure
	*/
	Create(context context.Context, series *Series) error

	/*
		Update overwrites the full descriptive and aggregated state of a
		series. Callers are expected to hold the per-series lock.

		Parameters:
		  - context: context.Context
		  - s: *Series

		Returns:
		  - error: apperr.NotFound if the row is missing
	*/
	Update(context context.Context, series *Series) error

	/*
		UpdateEditors replaces the delegated editor set of a series.

		Parameters:
		  - context: context.Context
		  - id: urn.URN
		  - editors: []urn.URN

		Returns:
		  - error: apperr.NotFound if the row is missing
	*/
	UpdateEditors(context context.Context, id urn.URN, editors []urn.URN) error

	/*
		Delete removes a series row permanently.

		Parameters:
		  - context: context.Context
		  - id: urn.URN

		Returns:
		  - error: apperr.NotFound if the row is missing
	*/
	Delete(context context.Context, id urn.URN) error
}

// UnitRepository defines the data access contract for child units.
type UnitRepository interface {

	/*
		ListBySeries returns every unit of a series ordered by unit number.
		The aggregator consumes this full list, so no pagination applies.

		Parameters:
		  - context: context.Context
		  - seriesID: urn.URN

		Returns:
		  - []*Unit: Ordered child units
		  - error: Storage failures
	*/
	ListBySeries(context context.Context, seriesID urn.URN) ([]*Unit, error)

	/*
		FindByID returns the unit with the given URN.

		Parameters:
		  - context: context.Context
		  - id: urn.URN ("urn:mvn:unit:...")

		Returns:
		  - *Unit: Hydrated metadata
		  - error: apperr.NotFound if missing
	*/
	FindByID(context context.Context, id urn.URN) (*Unit, error)

	/*
		Create persists a new unit to the store.

		Parameters:
		  - context: context.Context
		  - u: *Unit

		Returns:
		  - error: Storage failure
	*/
	Create(context context.Context, unit *Unit) error

	/*
		Update overwrites the metadata of an existing unit.

		Parameters:
		  - context: context.Context
		  - u: *Unit

		Returns:
		  - error: apperr.NotFound if the row is missing
	*/
	Update(context context.Context, unit *Unit) error

	/*
		UpdateEditors replaces the delegated editor set of a unit.

		Parameters:
		  - context: context.Context
		  - id: urn.URN
		  - editors: []urn.URN

		Returns:
		  - error: apperr.NotFound if the row is missing
	*/
	UpdateEditors(context context.Context, id urn.URN, editors []urn.URN) error

	/*
		Delete removes a unit row permanently.

		Parameters:
		  - context: context.Context
		  - id: urn.URN

		Returns:
		  - error: apperr.NotFound if the row is missing
	*/
	Delete(context context.Context, id urn.URN) error
}
