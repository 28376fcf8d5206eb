package formatting

import (
	"fmt"
	"strings"

	"github.com/vl4dimr/tesis-system-unap/internal/docx"
	"github.com/vl4dimr/tesis-system-unap/internal/rules"
	"github.com/vl4dimr/tesis-system-unap/internal/types"
	"github.com/vl4dimr/tesis-system-unap/internal/validation"
)

// Metadata holds the core properties written into the formatted document.
// Empty fields are left untouched.
type Metadata struct {
	Title  string
	Author string
}

// Result is the outcome of a successful formatting run.
type Result struct {
	Changes []types.ChangeLogEntry
	Before  *types.ValidationReport
	After   *types.ValidationReport

	// Document holds the formatted package; only set by FormatBytes.
	Document []byte
}

// Format corrects doc in place, one phase at a time. Each phase is
// planned from a fresh validation of the document as the previous phases
// left it, so a correction that shifts another measurement (a new font
// size changes the multiple of an exact line spacing) is seen by the
// phases that follow. On error doc may be partially modified, so callers
// that need atomicity should use FormatBytes.
func Format(doc *docx.Document, cat *rules.Catalog, meta Metadata) (*Result, error) {
	// 1. Validate
	before := validation.Validate(doc.Model(), cat)

	// 2. Plan and apply each phase against the current state
	changes := make([]types.ChangeLogEntry, 0, len(rules.Phases())+1)
	current := before
	for _, phase := range rules.Phases() {
		var done []applied
		for _, action := range Propose(current, cat) {
			if action.Rule.Property.Phase() != phase {
				continue
			}
			n, err := Apply(doc, action)
			if err != nil {
				return nil, err
			}
			done = append(done, applied{rule: action.Rule, changed: n})
		}
		entry := phaseEntry(phase, done)
		if entry == nil {
			continue
		}
		changes = append(changes, *entry)
		if err := doc.Refresh(); err != nil {
			return nil, fmt.Errorf("failed to rebuild model after formatting: %w", err)
		}
		current = validation.Validate(doc.Model(), cat)
	}

	// 3. Metadata
	entry, err := applyMetadata(doc, meta)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		changes = append(changes, *entry)
	}

	// 4. Re-validate
	if err := doc.Refresh(); err != nil {
		return nil, fmt.Errorf("failed to rebuild model after formatting: %w", err)
	}
	after := validation.Validate(doc.Model(), cat)
	if residual := after.FailingErrors(); len(residual) > 0 {
		return nil, &IncompleteFormattingError{Residual: residual, Changes: changes}
	}

	return &Result{Changes: changes, Before: before, After: after}, nil
}

// FormatBytes loads a fresh copy of data, formats it and serializes it.
// Either the whole corrected package is returned or an error.
func FormatBytes(data []byte, cat *rules.Catalog, meta Metadata, opts ...docx.Option) (*Result, error) {
	doc, err := docx.Load(data, opts...)
	if err != nil {
		return nil, err
	}
	res, err := Format(doc, cat, meta)
	if err != nil {
		return nil, err
	}
	out, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize formatted document: %w", err)
	}
	res.Document = out
	return res, nil
}

// applyMetadata writes title and author into docProps/core.xml when the
// package carries one.
func applyMetadata(doc *docx.Document, meta Metadata) (*types.ChangeLogEntry, error) {
	if !doc.HasCoreProperties() {
		return nil, nil
	}

	var written []string
	for _, p := range []struct {
		prop  docx.CoreProperty
		value string
		label string
	}{
		{docx.CoreTitle, meta.Title, "título"},
		{docx.CoreCreator, meta.Author, "autor"},
	} {
		value := strings.TrimSpace(p.value)
		if value == "" {
			continue
		}
		changed, err := doc.SetCoreProperty(p.prop, value)
		if err != nil {
			return nil, &ApplyError{RuleID: "metadatos", Cause: err}
		}
		if changed {
			written = append(written, p.label)
		}
	}
	if len(written) == 0 {
		return nil, nil
	}
	return &types.ChangeLogEntry{
		Category:    "Metadatos",
		Description: "Metadatos actualizados: " + strings.Join(written, ", "),
		Elements:    len(written),
	}, nil
}
