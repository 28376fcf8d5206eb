package formatting

import (
	"fmt"
	"strings"

	"github.com/vl4dimr/tesis-system-unap/internal/rules"
	"github.com/vl4dimr/tesis-system-unap/internal/types"
	"github.com/vl4dimr/tesis-system-unap/internal/validation"
)

// applied is one rule's contribution to a phase.
type applied struct {
	rule    rules.Rule
	changed int
}

var phaseNames = map[rules.Phase]struct{ category, merged string }{
	rules.PhasePage:        {"Página", "Tamaño de página ajustado"},
	rules.PhaseMargins:     {"Márgenes", "Márgenes ajustados"},
	rules.PhaseFonts:       {"Fuentes", "Fuentes ajustadas"},
	rules.PhaseSpacing:     {"Interlineado", "Interlineado ajustado"},
	rules.PhaseIndentation: {"Sangría", "Sangría de primera línea ajustada"},
	rules.PhaseAlignment:   {"Alineación", "Alineación ajustada"},
	rules.PhaseHeadings:    {"Títulos", "Títulos ajustados"},
}

// phaseEntry folds the rules corrected in one phase into a single change
// log line. It returns nil when nothing changed.
func phaseEntry(phase rules.Phase, done []applied) *types.ChangeLogEntry {
	var (
		ids   []string
		parts []string
		total int
	)
	for _, a := range done {
		if a.changed == 0 {
			continue
		}
		ids = append(ids, a.rule.ID)
		parts = append(parts, part(a.rule, a.changed))
		total += a.changed
	}
	if len(ids) == 0 {
		return nil
	}

	names := phaseNames[phase]
	description := names.merged + ": " + strings.Join(parts, ", ")
	if len(ids) == 1 {
		for _, a := range done {
			if a.changed > 0 {
				description = describe(a.rule, a.changed)
			}
		}
	}
	return &types.ChangeLogEntry{
		Category:    names.category,
		Rules:       ids,
		Description: description,
		Elements:    total,
	}
}

// describe renders the change log line of a phase with a single rule.
func describe(r rules.Rule, n int) string {
	expected := validation.ExpectedText(r)
	switch r.Property {
	case rules.PropPageSize:
		return "Tamaño de página ajustado a " + expected
	case rules.PropMarginTop, rules.PropMarginBottom, rules.PropMarginLeft, rules.PropMarginRight:
		return fmt.Sprintf("Margen %s ajustado a %s", validation.MarginName(r.Property), expected)
	case rules.PropFont:
		return fmt.Sprintf("Fuente ajustada a %s en %s", expected, elements(r.Locator.Scope, n))
	case rules.PropBold:
		if r.Expected.IsBold() {
			return "Negrita aplicada en " + elements(r.Locator.Scope, n)
		}
		return "Negrita retirada en " + elements(r.Locator.Scope, n)
	case rules.PropLineSpacing:
		return fmt.Sprintf("Interlineado ajustado a %s en %s", expected, elements(r.Locator.Scope, n))
	case rules.PropFirstLineIndent:
		return fmt.Sprintf("Sangría de primera línea ajustada a %s en %s", expected, elements(r.Locator.Scope, n))
	case rules.PropAlignment:
		return fmt.Sprintf("Alineación ajustada a %s en %s", expected, elements(r.Locator.Scope, n))
	case rules.PropChapters:
		if n == 1 {
			return "1 título de capítulo marcado como título de nivel 1"
		}
		return fmt.Sprintf("%d títulos de capítulo marcados como título de nivel 1", n)
	}
	return fmt.Sprintf("%s corregido en %d elementos", r.ID, n)
}

// part renders one rule inside a merged line, "superior 3.5cm" or
// "Times New Roman 16pt en 4 títulos de capítulo".
func part(r rules.Rule, n int) string {
	expected := validation.ExpectedText(r)
	switch r.Property {
	case rules.PropPageSize:
		return expected
	case rules.PropMarginTop, rules.PropMarginBottom, rules.PropMarginLeft, rules.PropMarginRight:
		return validation.MarginName(r.Property) + " " + expected
	case rules.PropChapters:
		return describe(r, n)
	}
	return expected + " en " + elements(r.Locator.Scope, n)
}

var scopeNouns = map[rules.Scope][2]string{
	rules.ScopeBody:          {"párrafo", "párrafos"},
	rules.ScopeTitles:        {"título", "títulos"},
	rules.ScopeChapterTitles: {"título de capítulo", "títulos de capítulo"},
	rules.ScopeSectionTitles: {"título de sección", "títulos de sección"},
	rules.ScopeSubtitles:     {"subtítulo", "subtítulos"},
	rules.ScopeCover:         {"párrafo de portada", "párrafos de portada"},
	rules.ScopeIndex:         {"entrada de índice", "entradas de índice"},
}

func elements(scope rules.Scope, n int) string {
	nouns, ok := scopeNouns[scope]
	if !ok {
		nouns = scopeNouns[rules.ScopeBody]
	}
	if n == 1 {
		return "1 " + nouns[0]
	}
	return fmt.Sprintf("%d %s", n, nouns[1])
}
