package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/resume-parser-web/internal/dashboard"
	"github.com/jonathan/resume-parser-web/internal/parserapi"
	"github.com/jonathan/resume-parser-web/internal/upload"
)

// errUnauthenticated is returned when a handler runs without an identity.
var errUnauthenticated = errors.New("not signed in")

// HTTPStatus returns the HTTP status code for an error.
func HTTPStatus(err error) int {
	var verr *upload.ValidationError
	var apiErr *parserapi.Error

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, upload.ErrInFlight):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrViewNotFound), errors.Is(err, dashboard.ErrNoSuchRecord):
		return http.StatusNotFound
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
