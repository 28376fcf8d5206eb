// Package validation evaluates a structural document against a rule catalog.
package validation

import (
	"fmt"
	"strings"

	"github.com/vl4dimr/tesis-system-unap/internal/rules"
	"github.com/vl4dimr/tesis-system-unap/internal/structure"
	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

func locateParagraphs(doc *types.StructuralDocument, loc rules.Locator) []types.Paragraph {
	switch loc.Scope {
	case rules.ScopeTitles:
		return structure.Titles(doc, loc.Section)
	case rules.ScopeChapterTitles:
		return structure.ChapterTitles(doc, loc.Section)
	case rules.ScopeSectionTitles:
		return structure.SectionTitles(doc, loc.Section)
	case rules.ScopeSubtitles:
		return structure.Subtitles(doc, loc.Section)
	case rules.ScopeCover:
		return structure.CoverParagraphs(doc, loc.Section)
	case rules.ScopeIndex:
		return structure.IndexEntries(doc, loc.Section)
	}
	return structure.BodyParagraphs(doc, loc.Section)
}

// runMatches reports whether a run has the expected font. An empty family
// or zero size in the rule leaves that attribute unchecked.
func runMatches(run types.Run, e rules.Expected) bool {
	if e.Family != "" && !strings.EqualFold(strings.TrimSpace(run.Font), strings.TrimSpace(e.Family)) {
		return false
	}
	if size := e.FontSize(); size > 0 && !within(run.SizePt, size, e.Tolerance) {
		return false
	}
	return true
}

func runFont(run types.Run) string {
	family := run.Font
	if family == "" {
		family = "(sin fuente)"
	}
	return fontText(family, run.SizePt)
}

func evaluateFont(doc *types.StructuralDocument, r rules.Rule) []types.Finding {
	var out []types.Finding
	expected := fontText(r.Expected.Family, r.Expected.FontSize())
	for _, p := range locateParagraphs(doc, r.Locator) {
		runs := p.TextRuns()
		valid := true
		actual := ""
		for _, run := range runs {
			if !runMatches(run, r.Expected) {
				valid = false
				actual = runFont(run)
				break
			}
		}
		if valid && len(runs) > 0 {
			actual = runFont(runs[0])
		}

		msg := fmt.Sprintf("Fuente correcta en párrafo %d: %s", p.Index, actual)
		if !valid {
			msg = fmt.Sprintf("Fuente incorrecta en párrafo %d: %s (esperado: %s)", p.Index, actual, expected)
		}
		out = append(out, result(r, paragraphLabel(p.Index), valid, actual, expected, msg, types.Locus{Section: p.Section, Paragraph: p.Index}))
	}
	return out
}

func evaluateLineSpacing(doc *types.StructuralDocument, r rules.Rule) []types.Finding {
	var out []types.Finding
	expected := formatNumber(r.Expected.Num())
	for _, p := range locateParagraphs(doc, r.Locator) {
		actual := formatNumber(p.LineSpacing)
		valid := within(p.LineSpacing, r.Expected.Num(), r.Expected.Tolerance)
		msg := fmt.Sprintf("Interlineado correcto en párrafo %d: %s", p.Index, actual)
		if !valid {
			msg = fmt.Sprintf("Interlineado incorrecto en párrafo %d: %s (esperado: %s)", p.Index, actual, expected)
		}
		out = append(out, result(r, paragraphLabel(p.Index), valid, actual, expected, msg, types.Locus{Section: p.Section, Paragraph: p.Index}))
	}
	return out
}

func evaluateFirstLineIndent(doc *types.StructuralDocument, r rules.Rule) []types.Finding {
	var out []types.Finding
	expected := formatCm(r.Expected.Num())
	for _, p := range locateParagraphs(doc, r.Locator) {
		actual := formatCm(p.FirstLineIndentCm)
		valid := within(p.FirstLineIndentCm, r.Expected.Num(), r.Expected.Tolerance)
		msg := fmt.Sprintf("Sangría correcta en párrafo %d: %s", p.Index, actual)
		if !valid {
			msg = fmt.Sprintf("Sangría incorrecta en párrafo %d: %s (esperado: %s)", p.Index, actual, expected)
		}
		out = append(out, result(r, paragraphLabel(p.Index), valid, actual, expected, msg, types.Locus{Section: p.Section, Paragraph: p.Index}))
	}
	return out
}

// evaluateBold checks every text run; one run off is enough to fail.
func evaluateBold(doc *types.StructuralDocument, r rules.Rule) []types.Finding {
	var out []types.Finding
	want := r.Expected.IsBold()
	expected := boldText(want)
	for _, p := range locateParagraphs(doc, r.Locator) {
		valid := true
		for _, run := range p.TextRuns() {
			if run.Bold != want {
				valid = false
				break
			}
		}
		actual := expected
		if !valid {
			actual = boldText(!want)
		}
		msg := fmt.Sprintf("Negrita correcta en párrafo %d", p.Index)
		if !valid {
			msg = fmt.Sprintf("Negrita incorrecta en párrafo %d: %s (esperado: %s)", p.Index, actual, expected)
		}
		out = append(out, result(r, paragraphLabel(p.Index), valid, actual, expected, msg, types.Locus{Section: p.Section, Paragraph: p.Index}))
	}
	return out
}

func evaluateAlignment(doc *types.StructuralDocument, r rules.Rule) []types.Finding {
	var out []types.Finding
	expected := r.Expected.Alignment
	for _, p := range locateParagraphs(doc, r.Locator) {
		actual := p.Alignment
		if actual == "" {
			actual = types.AlignLeft
		}
		valid := actual == expected
		msg := fmt.Sprintf("Alineación correcta en párrafo %d: %s", p.Index, actual)
		if !valid {
			msg = fmt.Sprintf("Alineación incorrecta en párrafo %d: %s (esperado: %s)", p.Index, actual, expected)
		}
		out = append(out, result(r, paragraphLabel(p.Index), valid, actual, expected, msg, types.Locus{Section: p.Section, Paragraph: p.Index}))
	}
	return out
}

func boldText(bold bool) string {
	if bold {
		return "negrita"
	}
	return "sin negrita"
}
