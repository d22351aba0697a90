package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/filmrate/internal/common"
)

var (
	ErrUnavailable = errors.New("store unavailable")
	ErrConflict    = errors.New("already exists")
	ErrNotFound    = errors.New("not found")

	ErrUnauthenticated = common.ErrUnauthenticated
	ErrUnauthorized    = common.ErrUnauthorized
	ErrValidation      = common.ErrValidation
)

// APIError is a failed store call. Message is the store's own text when it
// sent one, so it can be shown to the user verbatim.
type APIError struct {
	Status  int
	Message string
	Kind    error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	}
	return e.Kind.Error()
}

func (e *APIError) Unwrap() error { return e.Kind }

// kindForStatus maps an HTTP status and the store's message to a sentinel.
// The store reports duplicates with messages containing "already", not
// always with 409.
func kindForStatus(status int, message string) error {
	switch {
	case status == http.StatusConflict:
		return ErrConflict
	case status >= 400 && status < 500 && strings.Contains(strings.ToLower(message), "already"):
		return ErrConflict
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status == http.StatusUnauthorized:
		return ErrUnauthenticated
	case status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrUnavailable
	}
}

// outcome labels err for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "unavailable"
	}
}
