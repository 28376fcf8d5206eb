// Package validation evaluates a structural document against a rule catalog.
package validation

import (
	"fmt"

	"github.com/vl4dimr/tesis-system-unap/internal/rules"
	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

// evaluator produces one finding per element the rule locates. It may
// return no findings; Validate then reports the rule as unmatched unless
// its locator is optional.
type evaluator func(doc *types.StructuralDocument, r rules.Rule) []types.Finding

var evaluators = map[rules.Property]evaluator{
	rules.PropPageSize:        evaluatePageSize,
	rules.PropMarginTop:       evaluateMargin,
	rules.PropMarginBottom:    evaluateMargin,
	rules.PropMarginLeft:      evaluateMargin,
	rules.PropMarginRight:     evaluateMargin,
	rules.PropFont:            evaluateFont,
	rules.PropLineSpacing:     evaluateLineSpacing,
	rules.PropFirstLineIndent: evaluateFirstLineIndent,
	rules.PropBold:            evaluateBold,
	rules.PropAlignment:       evaluateAlignment,
	rules.PropChapters:        evaluateChapters,
	rules.PropSections:        evaluateSections,
	rules.PropFontFamilies:    evaluateFontFamilies,
}

// Validate evaluates every rule of the catalog, in catalog order, against
// the document. It never fails and is deterministic: the same document and
// catalog always yield an identical report.
func Validate(doc *types.StructuralDocument, cat *rules.Catalog) *types.ValidationReport {
	// 1. A document without text has nothing to measure
	if !doc.HasContent() {
		return types.NewValidationReport([]types.Finding{noContent()})
	}

	// 2. Evaluate each rule over the elements it locates
	var findings []types.Finding
	for _, r := range cat.Rules() {
		eval, ok := evaluators[r.Property]
		if !ok {
			continue
		}
		got := eval(doc, r)
		if len(got) == 0 && !r.Locator.Optional {
			got = []types.Finding{unmatched(r)}
		}
		findings = append(findings, got...)
	}

	return types.NewValidationReport(findings)
}

func noContent() types.Finding {
	return types.Finding{
		RuleID:   "contenido",
		Type:     "CONTENIDO",
		Category: "Documento",
		Element:  "Documento",
		Valid:    false,
		Actual:   "sin contenido",
		Expected: "texto del documento",
		Message:  "No se encontró contenido en el documento",
		Severity: types.SeverityError,
	}
}

// unmatched reports a rule whose locator selected nothing. It is always an
// error: a requirement that cannot be checked is not met.
func unmatched(r rules.Rule) types.Finding {
	element := "Documento"
	if r.Locator.Section > 0 {
		element = sectionLabel(r.Locator.Section)
	}
	return types.Finding{
		RuleID:     r.ID,
		Type:       r.Type,
		Category:   r.Category,
		Element:    element,
		Valid:      false,
		Actual:     "0 elementos",
		Expected:   ExpectedText(r),
		Message:    "No se encontró contenido para evaluar la regla " + r.ID,
		Severity:   types.SeverityError,
		Suggestion: r.Suggestion,
	}
}

// result builds a finding for r. Suggestions are only attached to
// failures.
func result(r rules.Rule, element string, valid bool, actual, expected, message string, locus types.Locus) types.Finding {
	f := types.Finding{
		RuleID:   r.ID,
		Type:     r.Type,
		Category: r.Category,
		Element:  element,
		Valid:    valid,
		Actual:   actual,
		Expected: expected,
		Message:  message,
		Severity: r.Severity,
		Locus:    locus,
	}
	if !valid {
		f.Suggestion = r.Suggestion
	}
	return f
}

// ExpectedText renders a rule's expected value the way findings show it.
func ExpectedText(r rules.Rule) string {
	switch r.Property {
	case rules.PropPageSize:
		return pageSizeText(r.Expected)
	case rules.PropFont:
		return fontText(r.Expected.Family, r.Expected.FontSize())
	case rules.PropLineSpacing:
		return formatNumber(r.Expected.Num())
	case rules.PropChapters, rules.PropSections:
		return joinSequence(r.Expected.Sequence)
	case rules.PropBold:
		return boldText(r.Expected.IsBold())
	case rules.PropAlignment:
		return r.Expected.Alignment
	case rules.PropFontFamilies:
		return fmt.Sprintf("máximo %d fuentes", int(r.Expected.Num()))
	}
	return formatCm(r.Expected.Num())
}
