package rest

import (
	"errors"
	"net/http"

	"file-vault-api/internal/domain/apperr"
)

// statusFromErr maps service errors to HTTP status codes. Unauthorized
// reads of private records arrive here already folded into ErrNotFound, so
// the mapping cannot leak their existence.
func statusFromErr(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case apperr.IsValidation(err):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperr.ErrEmailTaken):
		return http.StatusConflict, apperr.ErrEmailTaken.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
