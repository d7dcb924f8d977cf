package docstore

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/cookbook/pkg/query"
)

var (
	// ErrNotFound indicates the document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate indicates a document with the id already exists.
	ErrDuplicate = errors.New("document already exists")
	// ErrUnavailable indicates the backend could not be reached or failed.
	ErrUnavailable = errors.New("document store unavailable")
	// ErrInvalidQuery indicates a malformed query description.
	ErrInvalidQuery = query.ErrInvalid
	// ErrNotInteger indicates an increment on a field that holds a non-integer value.
	ErrNotInteger = errors.New("field is not an integer")
)

// MapHTTPStatus maps document store errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidQuery), errors.Is(err, ErrNotInteger):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
