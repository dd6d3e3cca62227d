package schema

import "github.com/mavun/mavun/internal/platform/constants"

// CatalogSeriesTable represents the 'catalog.series' table
type CatalogSeriesTable struct {
	Table           string
	ID              string
	Title           string
	Description     string
	PosterURL       string
	Tags            string
	ContentWarnings string
	Authors         string
	Scanlators      string
	Groups          string
	Localized       string
	Sources         string
	CreatedBy       string
	AllowedEditors  string
	CreatedAt       string
	UpdatedAt       string
}

// CatalogSeries is the schema definition for catalog.series
var CatalogSeries = CatalogSeriesTable{
	Table:           constants.SchemaCatalog + ".series",
	ID:              "id",
	Title:           "title",
	Description:     "description",
	PosterURL:       "posterurl",
	Tags:            "tags",
	ContentWarnings: "contentwarnings",
	Authors:         "authors",
	Scanlators:      "scanlators",
	Groups:          "groups",
	Localized:       "localized",
	Sources:         "sources",
	CreatedBy:       "createdby",
	AllowedEditors:  "allowededitors",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

func (t CatalogSeriesTable) Columns() []string {
	return []string{
		t.ID,
		t.Title,
		t.Description,
		t.PosterURL,
		t.Tags,
		t.ContentWarnings,
		t.Authors,
		t.Scanlators,
		t.Groups,
		t.Localized,
		t.Sources,
		t.CreatedBy,
		t.AllowedEditors,
		t.CreatedAt,
		t.UpdatedAt,
	}
}
