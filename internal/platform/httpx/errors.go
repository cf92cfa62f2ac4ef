// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound    = errors.New("resource not found")
	ErrDuplicate   = errors.New("duplicate entry")
	ErrValidation  = errors.New("validation failed")
	ErrConflict    = errors.New("write conflict")
	ErrInUse       = errors.New("record is referenced")
	ErrUnavailable = errors.New("dependency unavailable")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrInUse):
		Problem(w, http.StatusConflict, "In Use", err.Error())
	case errors.Is(err, ErrConflict):
		Problem(w, http.StatusConflict, "Write Conflict", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrUnavailable):
		Problem(w, http.StatusServiceUnavailable, "Unavailable", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
