// Copyright (c) 2026 Mavun. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mavun/mavun/internal/platform/apperr"
	"github.com/mavun/mavun/internal/platform/ctxutil"
	"github.com/mavun/mavun/internal/platform/sec"
	"github.com/mavun/mavun/internal/platform/validate"
	"github.com/mavun/mavun/pkg/urn"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
URNParam retrieves a named URL parameter and parses it as a URN.

Returns:
  - urn.URN: The parsed identifier
  - error: A 400-class apperr if the segment is not a well-formed URN
*/
func URNParam(request *http.Request, name string) (urn.URN, error) {
	parsed, err := urn.Parse(chi.URLParam(request, name))
	if err != nil {
		return urn.URN{}, apperr.FromURN(err)
	}
	return parsed, nil
}

/*
Claims extracts the authenticated user claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the user claims.

Returns:
  - *sec.AuthClaims: The authenticated user claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

/*
RequiredUserURN returns the identity URN of the currently logged-in user.

Returns:
  - urn.URN: The user's "urn:mvn:user:{id}" identity
  - error: apperr.Unauthorized if not authenticated or the token identity is corrupt
*/
func RequiredUserURN(request *http.Request) (urn.URN, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return urn.URN{}, err
	}

	userURN, ok := urn.TryParse(claims.UserURN)
	if !ok || !userURN.IsType(urn.TypeUser) {
		return urn.URN{}, apperr.Unauthorized("Invalid token identity")
	}

	return userURN, nil
}
