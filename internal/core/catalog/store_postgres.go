// Copyright (c) 2026 Mavun. All rights reserved.

package catalog

// PostgreSQL implementation of the catalogue's data access.
//
// Series and units live in the "catalog" schema. Identity columns hold the
// canonical URN string; structured metadata (tags, credits, localized blocks,
// federation sources, editor sets) is stored as jsonb so the aggregated shape
// travels to and from the store without junction-table fan-out.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mavun/mavun/internal/platform/apperr"
	"github.com/mavun/mavun/internal/platform/database/schema"
	"github.com/mavun/mavun/pkg/slice"
	"github.com/mavun/mavun/pkg/urn"
)

// # PostgreSQL Repositories

// seriesRepository implements the [SeriesRepository] interface using pgx.
type seriesRepository struct {
	pool *pgxpool.Pool
}

// NewSeriesRepository constructs a PostgreSQL backed series store.
func NewSeriesRepository(pool *pgxpool.Pool) SeriesRepository {
	return &seriesRepository{pool: pool}
}

// unitRepository implements the [UnitRepository] interface using pgx.
type unitRepository struct {
	pool *pgxpool.Pool
}

// NewUnitRepository constructs a PostgreSQL backed unit store.
func NewUnitRepository(pool *pgxpool.Pool) UnitRepository {
	return &unitRepository{pool: pool}
}

// # Series Repository Implementation

/*
List returns a filtered, paginated slice of series and the total count.

Description: Uses COUNT(*) OVER() to retrieve the total in the same
round-trip and jsonb containment (@>) for tag filtering against the
aggregated tag array.

Parameters:
  - context: context.Context
  - f: Filter (search, tags, sorting)
  - limit: int
  - offset: int

Returns:
  - []*Series: Slice of hydrated series entities
  - int: Total count matching filters
  - error: Database execution errors
*/
func (repository *seriesRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Series, int, error) {

	table := schema.CatalogSeries

	// Query build initialization
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s
		WHERE TRUE
	`, strings.Join(table.Columns(), ", "), table.Table))

	// Title search
	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s ILIKE $%d", table.Title, argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	// Tag filtering via jsonb containment against the aggregated array
	if len(filter.Tags) > 0 {
		tagsJSON, err := json.Marshal(filter.Tags)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to marshal tag filter: %w", err)
		}
		queryBuilder.WriteString(fmt.Sprintf(" AND %s @> $%d::jsonb", table.Tags, argID))
		args = append(args, tagsJSON)
		argID++
	}

	// Language presence filtering against the localized map keys
	if filter.Language != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s ? $%d", table.Localized, argID))
		args = append(args, filter.Language)
		argID++
	}

	// Apply Sorting Logic
	sort := table.CreatedAt
	switch filter.Sort {
	case "az", "za":
		sort = table.Title
	case "updated":
		sort = table.UpdatedAt
	}

	sortDir := "DESC"
	if strings.ToLower(filter.SortDir) == "asc" || filter.Sort == "az" {
		sortDir = "ASC"
	}
	if filter.Sort == "za" {
		sortDir = "DESC"
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s %s, %s DESC", sort, sortDir, table.ID))

	// Pagination injection
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	// Query Execution
	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list series: %w", err)
	}
	defer rows.Close()

	var seriesList []*Series
	var totalCount int

	for rows.Next() {
		series, err := scanSeries(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		seriesList = append(seriesList, series)
	}

	return seriesList, totalCount, nil
}

/*
FindByID retrieves a series record by its URN.

Parameters:
  - context: context.Context
  - id: urn.URN

Returns:
  - *Series: The fully hydrated series entity
  - error: apperr.NotFound if the series does not exist
*/
func (repository *seriesRepository) FindByID(context context.Context, id urn.URN) (*Series, error) {

	table := schema.CatalogSeries
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(table.Columns(), ", "), table.Table, table.ID)

	row := repository.pool.QueryRow(context, query, id.String())

	series, err := scanSeries(row, nil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("series")
		}
		return nil, err
	}

	return series, nil
}

/*
Create persists a new series entity.

Parameters:
  - context: context.Context
  - s: *Series

Returns:
  - error: SQL execution failures
*/
func (repository *seriesRepository) Create(context context.Context, series *Series) error {

	table := schema.CatalogSeries
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, table.Table,
		table.ID, table.Title, table.Description, table.PosterURL,
		table.Tags, table.ContentWarnings, table.Authors, table.Scanlators,
		table.Groups, table.Localized, table.Sources,
		table.CreatedBy, table.AllowedEditors,
	)

	args, err := seriesArgs(series)
	if err != nil {
		return err
	}

	if _, err := repository.pool.Exec(context, query, args...); err != nil {
		return fmt.Errorf("postgres: failed to create series: %w", err)
	}

	return nil
}

/*
Update overwrites the descriptive and aggregated state of a series.

Description: The aggregator recomputes the full entity, so this is a whole-row
overwrite rather than a PATCH-style partial update. The editor set is excluded;
it has its own dedicated write path under the permission lock.

Parameters:
  - context: context.Context
  - s: *Series

Returns:
  - error: apperr.NotFound if the target row does not exist
*/
func (repository *seriesRepository) Update(context context.Context, series *Series) error {

	table := schema.CatalogSeries
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = $1, %s = $2, %s = $3,
			%s = $4, %s = $5, %s = $6, %s = $7, %s = $8,
			%s = $9, %s = $10, %s = NOW()
		WHERE %s = $11
	`, table.Table,
		table.Title, table.Description, table.PosterURL,
		table.Tags, table.ContentWarnings, table.Authors, table.Scanlators, table.Groups,
		table.Localized, table.Sources, table.UpdatedAt,
		table.ID,
	)

	tagsJSON, warningsJSON, authorsJSON, scanlatorsJSON, groupsJSON, localizedJSON, sourcesJSON, err := seriesJSONColumns(series)
	if err != nil {
		return err
	}

	result, err := repository.pool.Exec(context, query,
		series.Title, series.Description, series.PosterURL,
		tagsJSON, warningsJSON, authorsJSON, scanlatorsJSON, groupsJSON,
		localizedJSON, sourcesJSON,
		series.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to update series: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("series")
	}

	return nil
}

/*
UpdateEditors replaces the delegated editor set of a series.

Parameters:
  - context: context.Context
  - id: urn.URN
  - editors: []urn.URN

Returns:
  - error: apperr.NotFound if the target row does not exist
*/
func (repository *seriesRepository) UpdateEditors(context context.Context, id urn.URN, editors []urn.URN) error {

	table := schema.CatalogSeries
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = NOW() WHERE %s = $2`,
		table.Table, table.AllowedEditors, table.UpdatedAt, table.ID)

	editorsJSON, err := marshalURNs(editors)
	if err != nil {
		return err
	}

	result, err := repository.pool.Exec(context, query, editorsJSON, id.String())
	if err != nil {
		return fmt.Errorf("postgres: failed to update series editors: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("series")
	}

	return nil
}

/*
Delete removes a series row permanently.
*/
func (repository *seriesRepository) Delete(context context.Context, id urn.URN) error {

	table := schema.CatalogSeries
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table.Table, table.ID)

	result, err := repository.pool.Exec(context, query, id.String())
	if err != nil {
		return fmt.Errorf("postgres: failed to delete series: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("series")
	}

	return nil
}

// # Unit Repository Implementation

/*
ListBySeries retrieves every unit of a series ordered by unit number.

Parameters:
  - context: context.Context
  - seriesID: urn.URN

Returns:
  - []*Unit: Ordered child units
  - error: Storage failures
*/
func (repository *unitRepository) ListBySeries(context context.Context, seriesID urn.URN) ([]*Unit, error) {

	table := schema.CatalogUnit
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC, %s ASC`,
		strings.Join(table.Columns(), ", "), table.Table, table.SeriesID, table.Number, table.CreatedAt)

	rows, err := repository.pool.Query(context, query, seriesID.String())
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list units: %w", err)
	}
	defer rows.Close()

	var units []*Unit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}

	return units, nil
}

/*
FindByID returns the unit with the given URN.

Parameters:
  - context: context.Context
  - id: urn.URN

Returns:
  - *Unit: Hydrated metadata
  - error: apperr.NotFound on absent rows
*/
func (repository *unitRepository) FindByID(context context.Context, id urn.URN) (*Unit, error) {

	table := schema.CatalogUnit
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(table.Columns(), ", "), table.Table, table.ID)

	row := repository.pool.QueryRow(context, query, id.String())

	unit, err := scanUnit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("unit")
		}
		return nil, err
	}

	return unit, nil
}

/*
Create persists a new unit record.
*/
func (repository *unitRepository) Create(context context.Context, unit *Unit) error {

	table := schema.CatalogUnit
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, table.Table,
		table.ID, table.SeriesID, table.Number, table.Title,
		table.Tags, table.ContentWarnings, table.Authors, table.Scanlators,
		table.Localized, table.Sources, table.CreatedBy, table.AllowedEditors,
	)

	args, err := unitArgs(unit)
	if err != nil {
		return err
	}

	if _, err := repository.pool.Exec(context, query, args...); err != nil {
		return fmt.Errorf("postgres: failed to create unit: %w", err)
	}

	return nil
}

/*
Update overwrites the metadata of an existing unit. The parent reference and
editor set are excluded: a unit never changes parent, and the editor set has
its own write path.
*/
func (repository *unitRepository) Update(context context.Context, unit *Unit) error {

	table := schema.CatalogUnit
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = $1, %s = $2,
			%s = $3, %s = $4, %s = $5, %s = $6,
			%s = $7, %s = $8, %s = NOW()
		WHERE %s = $9
	`, table.Table,
		table.Number, table.Title,
		table.Tags, table.ContentWarnings, table.Authors, table.Scanlators,
		table.Localized, table.Sources, table.UpdatedAt,
		table.ID,
	)

	tagsJSON, err := marshalColumn(unit.Tags)
	if err != nil {
		return err
	}
	warningsJSON, err := marshalColumn(unit.ContentWarnings)
	if err != nil {
		return err
	}
	authorsJSON, err := marshalColumn(unit.Authors)
	if err != nil {
		return err
	}
	scanlatorsJSON, err := marshalColumn(unit.Scanlators)
	if err != nil {
		return err
	}
	localizedJSON, err := marshalObjectColumn(unit.Localized)
	if err != nil {
		return err
	}
	sourcesJSON, err := marshalURNs(unit.Sources)
	if err != nil {
		return err
	}

	result, err := repository.pool.Exec(context, query,
		unit.Number, unit.Title,
		tagsJSON, warningsJSON, authorsJSON, scanlatorsJSON,
		localizedJSON, sourcesJSON,
		unit.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to update unit: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("unit")
	}

	return nil
}

/*
UpdateEditors replaces the delegated editor set of a unit.
*/
func (repository *unitRepository) UpdateEditors(context context.Context, id urn.URN, editors []urn.URN) error {

	table := schema.CatalogUnit
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = NOW() WHERE %s = $2`,
		table.Table, table.AllowedEditors, table.UpdatedAt, table.ID)

	editorsJSON, err := marshalURNs(editors)
	if err != nil {
		return err
	}

	result, err := repository.pool.Exec(context, query, editorsJSON, id.String())
	if err != nil {
		return fmt.Errorf("postgres: failed to update unit editors: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("unit")
	}

	return nil
}

/*
Delete removes a unit row permanently.
*/
func (repository *unitRepository) Delete(context context.Context, id urn.URN) error {

	table := schema.CatalogUnit
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table.Table, table.ID)

	result, err := repository.pool.Exec(context, query, id.String())
	if err != nil {
		return fmt.Errorf("postgres: failed to delete unit: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("unit")
	}

	return nil
}

// # Row Hydration

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSeries hydrates a series row. When totalCount is non-nil the query is
// expected to carry a trailing COUNT(*) OVER() column.
func scanSeries(row rowScanner, totalCount *int) (*Series, error) {

	series := &Series{}
	var rawID, rawCreatedBy string
	var tagsJSON, warningsJSON, authorsJSON, scanlatorsJSON, groupsJSON, localizedJSON, sourcesJSON, editorsJSON []byte

	dest := []any{
		&rawID, &series.Title, &series.Description, &series.PosterURL,
		&tagsJSON, &warningsJSON, &authorsJSON, &scanlatorsJSON, &groupsJSON,
		&localizedJSON, &sourcesJSON,
		&rawCreatedBy, &editorsJSON,
		&series.CreatedAt, &series.UpdatedAt,
	}
	if totalCount != nil {
		dest = append(dest, totalCount)
	}

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("postgres: failed to scan series: %w", err)
	}

	id, err := urn.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("postgres: corrupt series identity %q: %w", rawID, err)
	}
	series.ID = id

	createdBy, err := urn.Parse(rawCreatedBy)
	if err != nil {
		return nil, fmt.Errorf("postgres: corrupt series owner %q: %w", rawCreatedBy, err)
	}
	series.CreatedBy = createdBy

	if err := unmarshalColumns(map[string]columnTarget{
		"tags":             {tagsJSON, &series.Tags},
		"content warnings": {warningsJSON, &series.ContentWarnings},
		"authors":          {authorsJSON, &series.Authors},
		"scanlators":       {scanlatorsJSON, &series.Scanlators},
		"groups":           {groupsJSON, &series.Groups},
		"localized":        {localizedJSON, &series.Localized},
		"sources":          {sourcesJSON, &series.Sources},
		"editors":          {editorsJSON, &series.AllowedEditors},
	}); err != nil {
		return nil, err
	}

	return series, nil
}

// scanUnit hydrates a unit row.
func scanUnit(row rowScanner) (*Unit, error) {

	unit := &Unit{}
	var rawID, rawSeriesID, rawCreatedBy string
	var tagsJSON, warningsJSON, authorsJSON, scanlatorsJSON, localizedJSON, sourcesJSON, editorsJSON []byte

	err := row.Scan(
		&rawID, &rawSeriesID, &unit.Number, &unit.Title,
		&tagsJSON, &warningsJSON, &authorsJSON, &scanlatorsJSON,
		&localizedJSON, &sourcesJSON,
		&rawCreatedBy, &editorsJSON,
		&unit.CreatedAt, &unit.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("postgres: failed to scan unit: %w", err)
	}

	id, err := urn.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("postgres: corrupt unit identity %q: %w", rawID, err)
	}
	unit.ID = id

	seriesID, err := urn.Parse(rawSeriesID)
	if err != nil {
		return nil, fmt.Errorf("postgres: corrupt unit parent %q: %w", rawSeriesID, err)
	}
	unit.SeriesID = seriesID

	createdBy, err := urn.Parse(rawCreatedBy)
	if err != nil {
		return nil, fmt.Errorf("postgres: corrupt unit owner %q: %w", rawCreatedBy, err)
	}
	unit.CreatedBy = createdBy

	if err := unmarshalColumns(map[string]columnTarget{
		"tags":             {tagsJSON, &unit.Tags},
		"content warnings": {warningsJSON, &unit.ContentWarnings},
		"authors":          {authorsJSON, &unit.Authors},
		"scanlators":       {scanlatorsJSON, &unit.Scanlators},
		"localized":        {localizedJSON, &unit.Localized},
		"sources":          {sourcesJSON, &unit.Sources},
		"editors":          {editorsJSON, &unit.AllowedEditors},
	}); err != nil {
		return nil, err
	}

	return unit, nil
}

// # JSON Column Helpers

type columnTarget struct {
	raw  []byte
	into any
}

func unmarshalColumns(targets map[string]columnTarget) error {
	for name, target := range targets {
		if len(target.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(target.raw, target.into); err != nil {
			return fmt.Errorf("postgres: failed to unmarshal %s: %w", name, err)
		}
	}
	return nil
}

// marshalColumn serializes a slice or map for a jsonb column. Nil values
// persist as empty containers so row hydration never sees SQL NULL.
func marshalColumn(value any) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to marshal column: %w", err)
	}
	if string(raw) == "null" {
		return []byte("[]"), nil
	}
	return raw, nil
}

// marshalObjectColumn serializes a map for a jsonb column. Nil maps persist
// as empty objects so row hydration never unmarshals an array into a map.
func marshalObjectColumn(value any) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to marshal column: %w", err)
	}
	if string(raw) == "null" {
		return []byte("{}"), nil
	}
	return raw, nil
}

// marshalURNs serializes a URN slice as a jsonb string array.
func marshalURNs(urns []urn.URN) ([]byte, error) {
	return marshalColumn(slice.Map(urns, urn.URN.String))
}

// seriesJSONColumns marshals every jsonb column of a series in one pass.
func seriesJSONColumns(series *Series) (tags, warnings, authors, scanlators, groups, localized, sources []byte, err error) {
	if tags, err = marshalColumn(series.Tags); err != nil {
		return
	}
	if warnings, err = marshalColumn(series.ContentWarnings); err != nil {
		return
	}
	if authors, err = marshalColumn(series.Authors); err != nil {
		return
	}
	if scanlators, err = marshalColumn(series.Scanlators); err != nil {
		return
	}
	if groups, err = marshalColumn(series.Groups); err != nil {
		return
	}
	if localized, err = marshalObjectColumn(series.Localized); err != nil {
		return
	}
	sources, err = marshalURNs(series.Sources)
	return
}

// seriesArgs builds the positional insert arguments for a series row.
func seriesArgs(series *Series) ([]any, error) {
	tagsJSON, warningsJSON, authorsJSON, scanlatorsJSON, groupsJSON, localizedJSON, sourcesJSON, err := seriesJSONColumns(series)
	if err != nil {
		return nil, err
	}
	editorsJSON, err := marshalURNs(series.AllowedEditors)
	if err != nil {
		return nil, err
	}

	return []any{
		series.ID.String(), series.Title, series.Description, series.PosterURL,
		tagsJSON, warningsJSON, authorsJSON, scanlatorsJSON, groupsJSON,
		localizedJSON, sourcesJSON,
		series.CreatedBy.String(), editorsJSON,
	}, nil
}

// unitArgs builds the positional insert arguments for a unit row.
func unitArgs(unit *Unit) ([]any, error) {
	tagsJSON, err := marshalColumn(unit.Tags)
	if err != nil {
		return nil, err
	}
	warningsJSON, err := marshalColumn(unit.ContentWarnings)
	if err != nil {
		return nil, err
	}
	authorsJSON, err := marshalColumn(unit.Authors)
	if err != nil {
		return nil, err
	}
	scanlatorsJSON, err := marshalColumn(unit.Scanlators)
	if err != nil {
		return nil, err
	}
	localizedJSON, err := marshalObjectColumn(unit.Localized)
	if err != nil {
		return nil, err
	}
	sourcesJSON, err := marshalURNs(unit.Sources)
	if err != nil {
		return nil, err
	}
	editorsJSON, err := marshalURNs(unit.AllowedEditors)
	if err != nil {
		return nil, err
	}

	return []any{
		unit.ID.String(), unit.SeriesID.String(), unit.Number, unit.Title,
		tagsJSON, warningsJSON, authorsJSON, scanlatorsJSON,
		localizedJSON, sourcesJSON,
		unit.CreatedBy.String(), editorsJSON,
	}, nil
}
