package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is matched with errors.Is against any 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// Error is a structured failure from the remote API.
type Error struct {
	Status  int
	Message string
	// Fields holds per-field validation messages from 400/422 responses,
	// keyed the way the server keys them (name, surname, zip_code, ...).
	Fields map[string][]string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// IsValidation reports whether err carries field-keyed validation messages
// that can be surfaced per field without aborting the form.
func IsValidation(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnprocessableEntity) &&
		len(apiErr.Fields) > 0
}

// FieldErrors extracts the per-field messages from err, or nil.
func FieldErrors(err error) map[string][]string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}
