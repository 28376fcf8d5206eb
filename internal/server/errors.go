// Package server provides the HTTP API of the document service.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vl4dimr/tesis-system-unap/internal/docx"
	"github.com/vl4dimr/tesis-system-unap/internal/engine"
	"github.com/vl4dimr/tesis-system-unap/internal/formatting"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrPayloadTooLarge indicates the upload exceeded the configured cap
type ErrPayloadTooLarge struct {
	Limit int64
}

func (e *ErrPayloadTooLarge) Error() string {
	return fmt.Sprintf("upload exceeds %d bytes", e.Limit)
}

// ErrNotFound indicates a missing resource
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized indicates a rejected service token
type ErrUnauthorized struct {
	Reason string
	Cause  error
}

func (e *ErrUnauthorized) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unauthorized: %s: %v", e.Reason, e.Cause)
	}
	return "unauthorized: " + e.Reason
}

func (e *ErrUnauthorized) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation  *ErrValidation
		tooLarge    *ErrPayloadTooLarge
		maxBytes    *http.MaxBytesError
		notFound    *ErrNotFound
		unauth      *ErrUnauthorized
		corrupt     *docx.CorruptDocumentError
		unsupported *docx.UnsupportedDocumentError
		incomplete  *formatting.IncompleteFormattingError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &corrupt):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &unauth):
		return http.StatusUnauthorized
	case errors.As(err, &unsupported), errors.As(err, &incomplete):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrOverloaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, engine.ErrQueueTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
