// Package report maps validation and formatting outcomes into the wire
// shapes returned to callers.
package report

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/vl4dimr/tesis-system-unap/internal/docx"
	"github.com/vl4dimr/tesis-system-unap/internal/formatting"
	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

// ValidacionItem is one finding as the caller sees it.
type ValidacionItem struct {
	Tipo          string  `json:"tipo"`
	Categoria     string  `json:"categoria"`
	Elemento      string  `json:"elemento"`
	EsValido      bool    `json:"es_valido"`
	ValorActual   string  `json:"valor_actual"`
	ValorEsperado string  `json:"valor_esperado"`
	Mensaje       string  `json:"mensaje"`
	Severidad     string  `json:"severidad"`
	Sugerencia    *string `json:"sugerencia"`
}

// ValidacionResultado is the response of a validation request.
type ValidacionResultado struct {
	IDReporte              string           `json:"id_reporte,omitempty"`
	Archivo                string           `json:"archivo,omitempty"`
	EsValido               bool             `json:"es_valido"`
	PorcentajeCumplimiento float64          `json:"porcentaje_cumplimiento"`
	TotalValidaciones      int              `json:"total_validaciones"`
	Errores                int              `json:"errores"`
	Advertencias           int              `json:"advertencias"`
	Sugerencias            int              `json:"sugerencias"`
	Items                  []ValidacionItem `json:"items"`
}

// FormateoResultado is the response of a formatting request.
type FormateoResultado struct {
	IDReporte              string   `json:"id_reporte,omitempty"`
	Exito                  bool     `json:"exito"`
	Mensaje                string   `json:"mensaje"`
	CambiosRealizados      []string `json:"cambios_realizados"`
	ArchivoFormateado      string   `json:"archivo_formateado,omitempty"`
	DocumentoBase64        string   `json:"documento_base64,omitempty"`
	PorcentajeCumplimiento float64  `json:"porcentaje_cumplimiento"`
}

// ErrorDetail is the body of every non-2xx response.
type ErrorDetail struct {
	Detail            string           `json:"detail"`
	Items             []ValidacionItem `json:"items,omitempty"`
	CambiosRealizados []string         `json:"cambios_realizados,omitempty"`
}

// FromValidation maps a validation report. Failing counts are per severity.
func FromValidation(r *types.ValidationReport) ValidacionResultado {
	return ValidacionResultado{
		EsValido:               r.Valid,
		PorcentajeCumplimiento: r.Percentage,
		TotalValidaciones:      len(r.Findings),
		Errores:                r.CountFailing(types.SeverityError),
		Advertencias:           r.CountFailing(types.SeverityWarning),
		Sugerencias:            r.CountFailing(types.SeveritySuggestion),
		Items:                  Items(r.Findings),
	}
}

// Items maps findings in order.
func Items(findings []types.Finding) []ValidacionItem {
	items := make([]ValidacionItem, len(findings))
	for i, f := range findings {
		items[i] = ValidacionItem{
			Tipo:          f.Type,
			Categoria:     f.Category,
			Elemento:      f.Element,
			EsValido:      f.Valid,
			ValorActual:   f.Actual,
			ValorEsperado: f.Expected,
			Mensaje:       f.Message,
			Severidad:     string(f.Severity),
		}
		if f.Suggestion != "" {
			s := f.Suggestion
			items[i].Sugerencia = &s
		}
	}
	return items
}

// Changes returns the change log as display strings.
func Changes(entries []types.ChangeLogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Description
	}
	return out
}

// FromFormatting maps a successful formatting run. The document bytes are
// embedded only when inline is set.
func FromFormatting(res *formatting.Result, file string, inline bool) FormateoResultado {
	out := FormateoResultado{
		Exito:             true,
		Mensaje:           "Documento formateado exitosamente",
		CambiosRealizados: Changes(res.Changes),
		ArchivoFormateado: file,
	}
	if len(res.Changes) == 0 {
		out.Mensaje = "El documento ya cumple con el formato; no se realizaron cambios"
	}
	if res.After != nil {
		out.PorcentajeCumplimiento = res.After.Percentage
	}
	if inline {
		out.DocumentoBase64 = base64.StdEncoding.EncodeToString(res.Document)
	}
	return out
}

// Detail renders err for a non-2xx response.
func Detail(err error) ErrorDetail {
	var (
		incomplete  *formatting.IncompleteFormattingError
		corrupt     *docx.CorruptDocumentError
		unsupported *docx.UnsupportedDocumentError
	)
	switch {
	case errors.As(err, &incomplete):
		return ErrorDetail{
			Detail:            fmt.Sprintf("El formateo no pudo corregir %d errores; el documento no fue modificado", len(incomplete.Residual)),
			Items:             Items(incomplete.Residual),
			CambiosRealizados: Changes(incomplete.Changes),
		}
	case errors.As(err, &corrupt):
		return ErrorDetail{Detail: "El archivo no es un documento .docx válido: " + corrupt.Error()}
	case errors.As(err, &unsupported):
		return ErrorDetail{Detail: "El documento usa una estructura no soportada: " + unsupported.Error()}
	}
	return ErrorDetail{Detail: err.Error()}
}
