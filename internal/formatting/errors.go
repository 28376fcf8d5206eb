// Package formatting rewrites the formatting properties of a document so it
// complies with a rule catalog.
package formatting

import (
	"fmt"

	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

// IncompleteFormattingError is returned when ERROR findings remain after
// every correction has been applied. The corrected bytes are never handed
// out in that case.
type IncompleteFormattingError struct {
	Residual []types.Finding
	Changes  []types.ChangeLogEntry
}

func (e *IncompleteFormattingError) Error() string {
	return fmt.Sprintf("formatting incomplete: %d error findings remain after %d corrections", len(e.Residual), len(e.Changes))
}

// ApplyError represents a failure while applying one rule's correction.
type ApplyError struct {
	RuleID string
	Cause  error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("formatting apply error: rule %s: %v", e.RuleID, e.Cause)
}

func (e *ApplyError) Unwrap() error {
	return e.Cause
}
