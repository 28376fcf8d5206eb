package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vl4dimr/tesis-system-unap/internal/docx"
	"github.com/vl4dimr/tesis-system-unap/internal/engine"
	"github.com/vl4dimr/tesis-system-unap/internal/formatting"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ErrValidation{Field: "file", Message: "x"}, http.StatusBadRequest},
		{"corrupt document", &docx.CorruptDocumentError{Message: "not a zip package"}, http.StatusBadRequest},
		{"unsupported document", &docx.UnsupportedDocumentError{}, http.StatusUnprocessableEntity},
		{"incomplete formatting", &formatting.IncompleteFormattingError{}, http.StatusUnprocessableEntity},
		{"payload too large", &ErrPayloadTooLarge{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"max bytes reader", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"not found", &ErrNotFound{Resource: "reporte", ID: "1"}, http.StatusNotFound},
		{"unauthorized", &ErrUnauthorized{Reason: "token expired"}, http.StatusUnauthorized},
		{"overloaded", engine.ErrOverloaded, http.StatusServiceUnavailable},
		{"queue timeout", fmt.Errorf("validate: %w", engine.ErrQueueTimeout), http.StatusGatewayTimeout},
		{"wrapped corrupt", fmt.Errorf("load: %w", &docx.CorruptDocumentError{Message: "bad"}), http.StatusBadRequest},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "validation error: file - Solo se permiten archivos .docx",
		(&ErrValidation{Field: "file", Message: onlyDocxMessage}).Error())
	assert.Equal(t, "upload exceeds 1024 bytes", (&ErrPayloadTooLarge{Limit: 1024}).Error())
	assert.Equal(t, "reporte not found: abc", (&ErrNotFound{Resource: "reporte", ID: "abc"}).Error())

	cause := errors.New("signature is invalid")
	err := &ErrUnauthorized{Reason: "invalid token signature", Cause: cause}
	assert.Equal(t, "unauthorized: invalid token signature: signature is invalid", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestErrorDetail(t *testing.T) {
	assert.Equal(t, onlyDocxMessage, errorDetail(&ErrValidation{Field: "file", Message: onlyDocxMessage}).Detail)
	assert.Contains(t, errorDetail(engine.ErrOverloaded).Detail, "saturado")
	assert.Contains(t, errorDetail(&docx.CorruptDocumentError{Message: "not a zip package"}).Detail,
		"El archivo no es un documento .docx válido")
}
