package schema

import "github.com/mavun/mavun/internal/platform/constants"

// CatalogUnitTable represents the 'catalog.unit' table
type CatalogUnitTable struct {
	Table           string
	ID              string
	SeriesID        string
	Number          string
	Title           string
	Tags            string
	ContentWarnings string
	Authors         string
	Scanlators      string
	Localized       string
	Sources         string
	CreatedBy       string
	AllowedEditors  string
	CreatedAt       string
	UpdatedAt       string
}

// CatalogUnit is the schema definition for catalog.unit
var CatalogUnit = CatalogUnitTable{
	Table:           constants.SchemaCatalog + ".unit",
	ID:              "id",
	SeriesID:        "seriesid",
	Number:          "number",
	Title:           "title",
	Tags:            "tags",
	ContentWarnings: "contentwarnings",
	Authors:         "authors",
	Scanlators:      "scanlators",
	Localized:       "localized",
	Sources:         "sources",
	CreatedBy:       "createdby",
	AllowedEditors:  "allowededitors",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

func (t CatalogUnitTable) Columns() []string {
	return []string{
		t.ID,
		t.SeriesID,
		t.Number,
		t.Title,
		t.Tags,
		t.ContentWarnings,
		t.Authors,
		t.Scanlators,
		t.Localized,
		t.Sources,
		t.CreatedBy,
		t.AllowedEditors,
		t.CreatedAt,
		t.UpdatedAt,
	}
}
