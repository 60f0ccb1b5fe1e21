package handler

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/dmitrymomot/liveform/pkg/validator"
)

var ErrNilResponse = errors.New("handler: nil response")

// HTTPError pairs a status code with a stable machine-readable key.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string { return e.Key }

var (
	ErrBadRequest          = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrForbidden           = HTTPError{Code: http.StatusForbidden, Key: "forbidden"}
	ErrNotFound            = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict            = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrGone                = HTTPError{Code: http.StatusGone, Key: "gone"}
	ErrInternalServerError = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}

	// ErrNotDataStar rejects a plain request to a stream endpoint.
	ErrNotDataStar = HTTPError{Code: http.StatusBadRequest, Key: "datastar_required"}
)

// ValidationError maps field names to their messages, in rule order.
type ValidationError url.Values

// ValidationErrorFrom groups rule failures by field.
func ValidationErrorFrom(errs validator.ValidationErrors) ValidationError {
	ve := make(ValidationError)
	for _, e := range errs {
		url.Values(ve).Add(e.Field, e.Message)
	}
	return ve
}

// Error lists the first message of each field, sorted by field name.
func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if msgs := e[f]; len(msgs) > 0 {
			parts = append(parts, f+": "+msgs[0])
		}
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Get returns the first message for field.
func (e ValidationError) Get(field string) string { return url.Values(e).Get(field) }

type errorResponse struct{ err error }

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error { return e.err }

// Error hands err to the route's ErrorHandler without writing anything.
func Error(err error) Response {
	return errorResponse{err: err}
}
