// Copyright (c) 2026 Mavun. All rights reserved.

// Package pagination standardizes page-based navigation for list endpoints:
// parsing "page"/"limit" query parameters with clamping, deriving SQL offsets,
// and shaping the metadata block of paginated response envelopes.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the page size when the client does not specify one.
	DefaultLimit = 20
	// MaxLimit caps the page size a client may request.
	MaxLimit = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// Params holds the parsed page and limit from a request's query string.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the SQL OFFSET value derived from Page and Limit.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta constructs pagination metadata, deriving TotalPages from the total
// row count rounded up to whole pages.
func NewMeta(page, limit, total int) Meta {
	meta := Meta{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		meta.TotalPages = (total + limit - 1) / limit
	}
	return meta
}

// FromRequest parses "page" and "limit" from the query string. Missing,
// malformed, or out-of-range values fall back to the defaults; limits above
// [MaxLimit] are treated as malformed rather than silently capped.
func FromRequest(r *http.Request) Params {
	page := queryInt(r, "page", DefaultPage)
	if page < 1 {
		page = DefaultPage
	}

	limit := queryInt(r, "limit", DefaultLimit)
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	return Params{Page: page, Limit: limit}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
