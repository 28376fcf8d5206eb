package db

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

// Run kinds
const (
	RunKindValidation = "validacion"
	RunKindFormatting = "formateo"
)

// Run is one stored validation or formatting run
type Run struct {
	ID             uuid.UUID              `json:"id"`
	Kind           string                 `json:"tipo"`
	FileName       string                 `json:"archivo"`
	SHA256         string                 `json:"sha256"`
	CatalogVersion string                 `json:"version_reglas"`
	Valid          bool                   `json:"es_valido"`
	Percentage     float64                `json:"porcentaje_cumplimiento"`
	Findings       []types.Finding        `json:"items"`
	Changes        []types.ChangeLogEntry `json:"cambios_realizados"`
	ErrorMessage   *string                `json:"error,omitempty"`
	DurationMs     int64                  `json:"duracion_ms"`
	CreatedAt      time.Time              `json:"creado"`
}

func (r *Run) decode(findingsJSON, changesJSON []byte) error {
	r.Findings = []types.Finding{}
	r.Changes = []types.ChangeLogEntry{}
	if len(findingsJSON) > 0 {
		if err := json.Unmarshal(findingsJSON, &r.Findings); err != nil {
			return fmt.Errorf("failed to unmarshal findings: %w", err)
		}
	}
	if len(changesJSON) > 0 {
		if err := json.Unmarshal(changesJSON, &r.Changes); err != nil {
			return fmt.Errorf("failed to unmarshal changes: %w", err)
		}
	}
	return nil
}

// RunInput is the data needed to store a run. ID is generated when nil.
type RunInput struct {
	ID             uuid.UUID
	Kind           string
	FileName       string
	SHA256         string
	CatalogVersion string
	Valid          bool
	Percentage     float64
	Findings       []types.Finding
	Changes        []types.ChangeLogEntry
	ErrorMessage   *string
	DurationMs     int64
}

// Validate checks the fields the table requires.
func (in *RunInput) Validate() error {
	switch in.Kind {
	case RunKindValidation, RunKindFormatting:
	default:
		return fmt.Errorf("invalid run kind %q", in.Kind)
	}
	if len(in.SHA256) != 64 {
		return fmt.Errorf("invalid sha256 %q", in.SHA256)
	}
	if in.CatalogVersion == "" {
		return fmt.Errorf("catalog version is required")
	}
	if in.Percentage < 0 || in.Percentage > 100 {
		return fmt.Errorf("percentage out of range: %v", in.Percentage)
	}
	return nil
}

// NewValidationRun builds the input for a validation run.
func NewValidationRun(id uuid.UUID, file, sha, catalogVersion string, report *types.ValidationReport, took time.Duration) *RunInput {
	return &RunInput{
		ID:             id,
		Kind:           RunKindValidation,
		FileName:       file,
		SHA256:         sha,
		CatalogVersion: catalogVersion,
		Valid:          report.Valid,
		Percentage:     report.Percentage,
		Findings:       report.Findings,
		DurationMs:     took.Milliseconds(),
	}
}

// NewFormattingRun builds the input for a formatting run. A nil after
// report with a non-nil err records a failed run.
func NewFormattingRun(id uuid.UUID, file, sha, catalogVersion string, after *types.ValidationReport, changes []types.ChangeLogEntry, runErr error, took time.Duration) *RunInput {
	in := &RunInput{
		ID:             id,
		Kind:           RunKindFormatting,
		FileName:       file,
		SHA256:         sha,
		CatalogVersion: catalogVersion,
		Changes:        changes,
		DurationMs:     took.Milliseconds(),
	}
	if after != nil {
		in.Valid = after.Valid
		in.Percentage = after.Percentage
		in.Findings = after.Findings
	}
	if runErr != nil {
		msg := runErr.Error()
		in.ErrorMessage = &msg
		in.Valid = false
	}
	return in
}
