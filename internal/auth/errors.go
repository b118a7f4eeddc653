package auth

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrMissingAuthorization = errors.New("authorization required")
	ErrInvalidAuthorization = errors.New("invalid authorization")
	ErrMalformedRequest     = errors.New("malformed request")
	ErrRouteNotFound        = errors.New("route not found")
)

// StatusFor maps an error from this package to the HTTP status returned to
// the caller. Anything unrecognised is treated as unauthorized.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrRouteNotFound):
		return http.StatusNotFound
	default:
		return http.StatusUnauthorized
	}
}
