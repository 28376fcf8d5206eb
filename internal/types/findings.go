// Package types provides type definitions for structured data used throughout the thesis document service.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "math"

// Severity classifies a rule
type Severity string

// Severity levels
const (
	SeverityError      Severity = "ERROR"
	SeverityWarning    Severity = "ADVERTENCIA"
	SeveritySuggestion Severity = "SUGERENCIA"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeveritySuggestion:
		return true
	}
	return false
}

// Locus points a finding back at the element it was evaluated on.
// Zero fields mean "not applicable".
type Locus struct {
	Section   int `json:"seccion,omitempty"`
	Paragraph int `json:"parrafo,omitempty"`
}

// Finding is the outcome of evaluating one rule against one element.
type Finding struct {
	RuleID     string   `json:"regla"`
	Type       string   `json:"tipo"`
	Category   string   `json:"categoria"`
	Element    string   `json:"elemento"`
	Valid      bool     `json:"es_valido"`
	Actual     string   `json:"valor_actual"`
	Expected   string   `json:"valor_esperado"`
	Message    string   `json:"mensaje"`
	Severity   Severity `json:"severidad"`
	Suggestion string   `json:"sugerencia,omitempty"`
	Locus      Locus    `json:"ubicacion"`
}

// ValidationReport aggregates the findings of one validation run.
type ValidationReport struct {
	Findings   []Finding `json:"items"`
	Percentage float64   `json:"porcentaje_cumplimiento"`
	Valid      bool      `json:"es_valido"`
}

// NewValidationReport computes the aggregate fields from findings.
// The percentage is 100 only when every finding is valid.
func NewValidationReport(findings []Finding) *ValidationReport {
	if findings == nil {
		findings = []Finding{}
	}
	r := &ValidationReport{Findings: findings, Valid: true, Percentage: 100}

	valid := 0
	for _, f := range findings {
		if f.Valid {
			valid++
			continue
		}
		if f.Severity == SeverityError {
			r.Valid = false
		}
	}

	if len(findings) > 0 {
		pct := math.Round(10000*float64(valid)/float64(len(findings))) / 100
		if valid < len(findings) && pct >= 100 {
			pct = 99.99
		}
		r.Percentage = pct
	}
	return r
}

// Failing returns the findings that did not pass.
func (r *ValidationReport) Failing() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if !f.Valid {
			out = append(out, f)
		}
	}
	return out
}

// FailingErrors returns failing findings with ERROR severity.
func (r *ValidationReport) FailingErrors() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if !f.Valid && f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// CountFailing counts failing findings of the given severity.
func (r *ValidationReport) CountFailing(s Severity) int {
	n := 0
	for _, f := range r.Findings {
		if !f.Valid && f.Severity == s {
			n++
		}
	}
	return n
}

// ChangeLogEntry describes the corrections of one formatting phase, such as
// all margin changes.
type ChangeLogEntry struct {
	Category    string   `json:"categoria,omitempty"`
	Rules       []string `json:"reglas,omitempty"`
	Description string   `json:"descripcion"`
	Elements    int      `json:"elementos"`
}
