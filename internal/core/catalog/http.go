// Copyright (c) 2026 Mavun. All rights reserved.

package catalog

// HTTP interface for catalogue discovery and management.
//
// Routing strategy:
//   - Public: discovery endpoints accessible to all visitors (GET).
//   - Restricted: mutative endpoints requiring an authenticated identity;
//     edit rights on the target are resolved through the injected
//     [Authorizer] (ownership, series-owner cascade, delegated editors).

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mavun/mavun/internal/platform/apperr"
	"github.com/mavun/mavun/internal/platform/middleware"
	requestutil "github.com/mavun/mavun/internal/platform/request"
	"github.com/mavun/mavun/internal/platform/respond"
	"github.com/mavun/mavun/internal/platform/sec"
	"github.com/mavun/mavun/pkg/pagination"
	"github.com/mavun/mavun/pkg/urn"
)

// Authorizer resolves whether a user may edit a catalogue target. Implemented
// by the permission resolver; declared here to keep the dependency pointing
// inward.
type Authorizer interface {
	IsAuthorized(context context.Context, target, user urn.URN) (bool, error)
}

// # Handler Implementation

// Handler implements the HTTP layer for series and unit management.
type Handler struct {
	service    *Service
	authorizer Authorizer
}

// NewHandler constructs a new catalogue [Handler].
func NewHandler(service *Service, authorizer Authorizer) *Handler {
	return &Handler{service: service, authorizer: authorizer}
}

// Routes returns a [chi.Router] with the series endpoints. Mounted at /series.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery Endpoints
	router.Get("/", handler.listSeries)
	router.Get("/{id}", handler.getSeries)
	router.Get("/{id}/units", handler.listUnits)

	// ## Content Management (Authenticated)
	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)

		protected.Post("/", handler.createSeries)
		protected.Patch("/{id}", handler.updateSeries)
		protected.Delete("/{id}", handler.deleteSeries)
		protected.Post("/{id}/units", handler.createUnit)
	})

	// ## Curation Tooling (Moderator Protected)
	router.Group(func(curation chi.Router) {
		curation.Use(middleware.RequireRole(sec.RoleModerator))
		curation.Post("/{id}/recompute", handler.recomputeSeries)
	})

	return router
}

// UnitRoutes returns a [chi.Router] with the unit endpoints. Mounted at /units.
func (handler *Handler) UnitRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{id}", handler.getUnit)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Patch("/{id}", handler.updateUnit)
		protected.Delete("/{id}", handler.deleteUnit)
	})

	return router
}

// # Request Payloads

// seriesRequest defines the inbound JSON schema for series creation and
// curated updates.
type seriesRequest struct {
	Title           string                     `json:"title"`
	Description     string                     `json:"description"`
	PosterURL       string                     `json:"poster_url"`
	Tags            []string                   `json:"tags"`
	ContentWarnings []string                   `json:"content_warnings"`
	Authors         []Credit                   `json:"authors"`
	Scanlators      []Credit                   `json:"scanlators"`
	Groups          []Credit                   `json:"groups"`
	Localized       map[string]LocalizedSeries `json:"localized"`
	Sources         []urn.URN                  `json:"sources"`
}

// unitRequest defines the inbound JSON schema for unit creation and updates.
type unitRequest struct {
	Title           string                   `json:"title"`
	Number          float64                  `json:"number"`
	Tags            []string                 `json:"tags"`
	ContentWarnings []string                 `json:"content_warnings"`
	Authors         []Credit                 `json:"authors"`
	Scanlators      []Credit                 `json:"scanlators"`
	Localized       map[string]LocalizedUnit `json:"localized"`
	Sources         []urn.URN                `json:"sources"`
}

// # Series Endpoints

/*
GET /api/v1/series.

Description: Retrieves a paginated list of series from the catalogue.

Request:
  - q: string (Title search)
  - tag: []string (Aggregated tag filter, AND semantics)
  - language: string (Localized language presence)
  - sort: string (latest, updated, az, za)
  - dir: string (asc, desc)
  - limit: int
  - page: int

Response:
  - 200: []Series: Paginated list
*/
func (handler *Handler) listSeries(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Query:    queryParams.Get("q"),
		Tags:     queryParams["tag"],
		Language: queryParams.Get("language"),
		Sort:     queryParams.Get("sort"),
		SortDir:  queryParams.Get("dir"),
	}

	seriesList, total, err := handler.service.ListSeries(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, seriesList, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/series/{id}.

Response:
  - 200: Series: Success
  - 400: Malformed URN
  - 404: Series not found
*/
func (handler *Handler) getSeries(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.URNParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	series, err := handler.service.GetSeries(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, series)
}

/*
POST /api/v1/series.

Description: Creates a new series. The authenticated caller becomes the owner.

Response:
  - 201: Series: Created entity with minted URN
  - 422: Validation failure
*/
func (handler *Handler) createSeries(writer http.ResponseWriter, request *http.Request) {
	caller, err := requestutil.RequiredUserURN(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload seriesRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	series := &Series{
		Title:           payload.Title,
		Description:     payload.Description,
		PosterURL:       payload.PosterURL,
		Tags:            payload.Tags,
		ContentWarnings: payload.ContentWarnings,
		Authors:         payload.Authors,
		Scanlators:      payload.Scanlators,
		Groups:          payload.Groups,
		Localized:       payload.Localized,
		Sources:         payload.Sources,
		CreatedBy:       caller,
	}

	if err := handler.service.CreateSeries(request.Context(), series); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, series)
}

/*
PATCH /api/v1/series/{id}.

Description: Applies curated edits. Requires edit rights on the target
(owner or delegated editor). Responds with the freshly aggregated state.
*/
func (handler *Handler) updateSeries(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.URNParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.requireEditRights(request, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload seriesRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	merged, err := handler.service.UpdateSeries(request.Context(), &Series{
		ID:              id,
		Title:           payload.Title,
		Description:     payload.Description,
		PosterURL:       payload.PosterURL,
		Tags:            payload.Tags,
		ContentWarnings: payload.ContentWarnings,
		Authors:         payload.Authors,
		Scanlators:      payload.Scanlators,
		Groups:          payload.Groups,
		Localized:       payload.Localized,
		Sources:         payload.Sources,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, merged)
}

/*
DELETE /api/v1/series/{id}.

Description: Removes a series. Restricted to the owner or moderators.
*/
func (handler *Handler) deleteSeries(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.URNParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.requireOwnerOrModerator(request, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteSeries(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/series/{id}/recompute.

Description: Forces a full aggregation pass. Moderator tooling for repairing
inconsistent state after manual data surgery.
*/
func (handler *Handler) recomputeSeries(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.URNParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	merged, err := handler.service.RecomputeSeries(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, merged)
}

// # Unit Endpoints

/*
GET /api/v1/series/{id}/units.

Response:
  - 200: []Unit: All units ordered by number
*/
func (handler *Handler) listUnits(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.URNParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	units, err := handler.service.ListUnits(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, units)
}

/*
POST /api/v1/series/{id}/units.

Description: Uploads a new unit under a series. The caller becomes the unit
owner and needs no prior rights on the series; contributions flow through
aggregation regardless. Responds with the aggregated parent state.
*/
func (handler *Handler) createUnit(writer http.ResponseWriter, request *http.Request) {
	seriesID, err := requestutil.URNParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	caller, err := requestutil.RequiredUserURN(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload unitRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	unit := &Unit{
		SeriesID:        seriesID,
		Title:           payload.Title,
		Number:          payload.Number,
		Tags:            payload.Tags,
		ContentWarnings: payload.ContentWarnings,
		Authors:         payload.Authors,
		Scanlators:      payload.Scanlators,
		Localized:       payload.Localized,
		Sources:         payload.Sources,
		CreatedBy:       caller,
	}

	merged, err := handler.service.CreateUnit(request.Context(), unit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{
		"unit":   unit,
		"series": merged,
	})
}

/*
GET /api/v1/units/{id}.
*/
func (handler *Handler) getUnit(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.URNParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	unit, err := handler.service.GetUnit(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, unit)
}

/*
PATCH /api/v1/units/{id}.

Description: Applies edits to a unit. Requires edit rights on the unit
(unit owner, parent series owner, or delegated editor). Responds with the
aggregated parent state.
*/
func (handler *Handler) updateUnit(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.URNParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.requireEditRights(request, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload unitRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	merged, err := handler.service.UpdateUnit(request.Context(), &Unit{
		ID:              id,
		Title:           payload.Title,
		Number:          payload.Number,
		Tags:            payload.Tags,
		ContentWarnings: payload.ContentWarnings,
		Authors:         payload.Authors,
		Scanlators:      payload.Scanlators,
		Localized:       payload.Localized,
		Sources:         payload.Sources,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, merged)
}

/*
DELETE /api/v1/units/{id}.

Description: Removes a unit. Requires edit rights on the unit. Already
aggregated contributions remain on the parent.
*/
func (handler *Handler) deleteUnit(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.URNParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.requireEditRights(request, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	merged, err := handler.service.DeleteUnit(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, merged)
}

// # Authorization Gates

// requireEditRights resolves the caller identity and checks edit rights on
// target. Moderators and above bypass the per-target rules.
func (handler *Handler) requireEditRights(request *http.Request, target urn.URN) error {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		return err
	}
	if sec.UserRole(claims.Role).AtLeast(sec.RoleModerator) {
		return nil
	}

	caller, err := requestutil.RequiredUserURN(request)
	if err != nil {
		return err
	}

	allowed, err := handler.authorizer.IsAuthorized(request.Context(), target, caller)
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.Forbidden("You do not have edit rights on this resource")
	}
	return nil
}

// requireOwnerOrModerator restricts destructive series operations.
func (handler *Handler) requireOwnerOrModerator(request *http.Request, target urn.URN) error {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		return err
	}
	if sec.UserRole(claims.Role).AtLeast(sec.RoleModerator) {
		return nil
	}

	caller, err := requestutil.RequiredUserURN(request)
	if err != nil {
		return err
	}

	series, err := handler.service.GetSeries(request.Context(), target)
	if err != nil {
		return err
	}
	if series.Owner() != caller {
		return apperr.Forbidden("Only the owner may delete this series")
	}
	return nil
}
