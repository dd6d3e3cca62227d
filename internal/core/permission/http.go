// Copyright (c) 2026 Mavun. All rights reserved.

package permission

// HTTP interface for editor delegation.
//
// All routes require an authenticated identity. Delegation itself requires
// edit rights on the target: the resolver records who granted what, but the
// gate is enforced here at the boundary.

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mavun/mavun/internal/platform/apperr"
	"github.com/mavun/mavun/internal/platform/middleware"
	requestutil "github.com/mavun/mavun/internal/platform/request"
	"github.com/mavun/mavun/internal/platform/respond"
	"github.com/mavun/mavun/internal/platform/sec"
	"github.com/mavun/mavun/pkg/urn"
)

// # Handler Implementation

// Handler implements the HTTP layer for permission management.
type Handler struct {
	resolver *Resolver
}

// NewHandler constructs a new permission [Handler].
func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// Routes returns a [chi.Router] with the delegation endpoints. Mounted at
// /permissions.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireAuth)

	router.Get("/{target}/editors", handler.listEditors)
	router.Post("/{target}/editors", handler.grant)
	router.Delete("/{target}/editors/{user}", handler.revoke)

	return router
}

// # Request Payloads

// grantRequest defines the inbound JSON schema for a delegation grant.
type grantRequest struct {
	User string `json:"user"`
}

// editorsResponse wraps an editor set for the response envelope.
type editorsResponse struct {
	Target  urn.URN   `json:"target"`
	Editors []urn.URN `json:"editors"`
}

// # Delegation Endpoints

/*
GET /api/v1/permissions/{target}/editors.

Description: Lists the delegated editor set of a series or unit. Ownership
rights are implicit and never appear here.

Response:
  - 200: editorsResponse
  - 404: Target not found
  - 422: Target is not a series or unit URN
*/
func (handler *Handler) listEditors(writer http.ResponseWriter, request *http.Request) {
	target, err := requestutil.URNParam(request, "target")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	editors, err := handler.resolver.List(request.Context(), target)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, editorsResponse{Target: target, Editors: editors})
}

/*
POST /api/v1/permissions/{target}/editors.

Description: Grants edit rights on the target to a user. The caller must
themselves hold edit rights (or be a moderator). Granting an existing editor
is a no-op.

Request (Body):
  - user: string ("urn:mvn:user:...")

Response:
  - 200: editorsResponse: The editor set after the grant
  - 403: Caller lacks delegation rights
*/
func (handler *Handler) grant(writer http.ResponseWriter, request *http.Request) {
	target, err := requestutil.URNParam(request, "target")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	caller, err := handler.requireDelegationRights(request, target)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload grantRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := urn.Parse(payload.User)
	if err != nil {
		respond.Error(writer, request, apperr.FromURN(err))
		return
	}

	editors, err := handler.resolver.Grant(request.Context(), target, user, caller)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, editorsResponse{Target: target, Editors: editors})
}

/*
DELETE /api/v1/permissions/{target}/editors/{user}.

Description: Revokes a delegated editor. Revoking a user who is not in the
set is a no-op; ownership rights are untouched.

Response:
  - 200: editorsResponse: The editor set after the revocation
  - 403: Caller lacks delegation rights
*/
func (handler *Handler) revoke(writer http.ResponseWriter, request *http.Request) {
	target, err := requestutil.URNParam(request, "target")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.requireDelegationRights(request, target); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := requestutil.URNParam(request, "user")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	editors, err := handler.resolver.Revoke(request.Context(), target, user)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, editorsResponse{Target: target, Editors: editors})
}

// # Authorization Gate

// requireDelegationRights resolves the caller and verifies they may manage
// the target's editor set. Moderators and above bypass the per-target rules.
func (handler *Handler) requireDelegationRights(request *http.Request, target urn.URN) (urn.URN, error) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		return urn.URN{}, err
	}

	caller, err := requestutil.RequiredUserURN(request)
	if err != nil {
		return urn.URN{}, err
	}

	if sec.UserRole(claims.Role).AtLeast(sec.RoleModerator) {
		return caller, nil
	}

	allowed, err := handler.resolver.IsAuthorized(request.Context(), target, caller)
	if err != nil {
		return urn.URN{}, err
	}
	if !allowed {
		return urn.URN{}, apperr.Forbidden("You do not have delegation rights on this resource")
	}

	return caller, nil
}
