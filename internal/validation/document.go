// Package validation evaluates a structural document against a rule catalog.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vl4dimr/tesis-system-unap/internal/rules"
	"github.com/vl4dimr/tesis-system-unap/internal/structure"
	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

// chapter headings must be outline level 1
const chapterLevel = 1

// evaluateChapters emits one finding per expected chapter and one for
// their relative order. When a chapter label appears more than once, the
// occurrence formatted as a heading wins over plain text.
func evaluateChapters(doc *types.StructuralDocument, r rules.Rule) []types.Finding {
	first := make(map[string]structure.Chapter)
	for _, ch := range structure.Chapters(doc) {
		prev, seen := first[ch.Numeral]
		if !seen || (prev.Level != chapterLevel && ch.Level == chapterLevel) {
			first[ch.Numeral] = ch
		}
	}
	order := make([]string, 0, len(first))
	for numeral := range first {
		order = append(order, numeral)
	}
	sort.Slice(order, func(i, j int) bool { return first[order[i]].Paragraph < first[order[j]].Paragraph })

	expectedHeading := fmt.Sprintf("título de nivel %d", chapterLevel)
	out := make([]types.Finding, 0, len(r.Expected.Sequence)+1)
	for _, numeral := range r.Expected.Sequence {
		element := "Capitulo " + numeral
		ch, ok := first[numeral]
		switch {
		case !ok:
			out = append(out, result(r, element, false, "ausente", expectedHeading,
				fmt.Sprintf("Falta el CAPÍTULO %s", numeral), types.Locus{}))
		case ch.Level != chapterLevel:
			actual := fmt.Sprintf("párrafo %d sin formato de título", ch.Paragraph)
			if ch.Level > 0 {
				actual = fmt.Sprintf("párrafo %d, título de nivel %d", ch.Paragraph, ch.Level)
			}
			out = append(out, result(r, element, false, actual, expectedHeading,
				fmt.Sprintf("El CAPÍTULO %s no está marcado como %s", numeral, expectedHeading), types.Locus{Paragraph: ch.Paragraph}))
		default:
			out = append(out, result(r, element, true, fmt.Sprintf("párrafo %d, %s", ch.Paragraph, expectedHeading), expectedHeading,
				fmt.Sprintf("CAPÍTULO %s presente", numeral), types.Locus{Paragraph: ch.Paragraph}))
		}
	}

	// Order of the expected chapters that are present
	rank := make(map[string]int, len(r.Expected.Sequence))
	for i, n := range r.Expected.Sequence {
		rank[n] = i
	}
	var found []string
	ordered := true
	last := -1
	for _, n := range order {
		i, ok := rank[n]
		if !ok {
			continue
		}
		found = append(found, n)
		if i < last {
			ordered = false
		}
		last = i
	}
	actual := strings.Join(found, ", ")
	if actual == "" {
		actual = "ninguno"
	}
	expected := strings.Join(r.Expected.Sequence, ", ")
	msg := "Los capítulos siguen el orden esperado"
	if !ordered {
		msg = fmt.Sprintf("Los capítulos no siguen el orden esperado: %s (esperado: %s)", actual, expected)
	}
	out = append(out, result(r, "Orden de capitulos", ordered, actual, expected, msg, types.Locus{}))
	return out
}

// evaluateSections emits one finding per required section title.
func evaluateSections(doc *types.StructuralDocument, r rules.Rule) []types.Finding {
	titles := structure.Titles(doc, 0)
	out := make([]types.Finding, 0, len(r.Expected.Sequence))
	for _, want := range r.Expected.Sequence {
		name := primaryName(want)
		var match *types.Paragraph
		for i := range titles {
			if structure.MatchesSection(titles[i].Text(), want) {
				match = &titles[i]
				break
			}
		}
		if match == nil {
			out = append(out, result(r, name, false, "ausente", name,
				"Falta la sección: "+name, types.Locus{}))
			continue
		}
		text := strings.TrimSpace(match.Text())
		out = append(out, result(r, name, true, text, name,
			"Sección encontrada: "+text, types.Locus{Section: match.Section, Paragraph: match.Index}))
	}
	return out
}

// evaluateFontFamilies counts the distinct font families over every text
// run of the document and fails when there are more than the rule allows.
func evaluateFontFamilies(doc *types.StructuralDocument, r rules.Rule) []types.Finding {
	counts := map[string]int{}
	names := map[string]string{}
	for _, p := range doc.Paragraphs {
		for _, run := range p.TextRuns() {
			family := strings.TrimSpace(run.Font)
			if family == "" {
				continue
			}
			key := strings.ToLower(family)
			if _, ok := names[key]; !ok {
				names[key] = family
			}
			counts[key]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	limit := int(r.Expected.Num())
	valid := len(keys) <= limit
	actual := fmt.Sprintf("%d fuentes diferentes", len(keys))
	if len(keys) == 1 {
		actual = "1 fuente"
	}
	expected := ExpectedText(r)
	msg := "Fuentes consistentes: " + familyList(keys, names, counts)
	if !valid {
		msg = "Se encontraron múltiples fuentes: " + familyList(keys, names, counts)
	}
	return []types.Finding{result(r, "Documento", valid, actual, expected, msg, types.Locus{})}
}

// familyList renders the most used families, "Times New Roman (40), Arial (3)".
func familyList(keys []string, names map[string]string, counts map[string]int) string {
	const shown = 5
	parts := make([]string, 0, shown)
	for i, k := range keys {
		if i == shown {
			break
		}
		parts = append(parts, fmt.Sprintf("%s (%d)", names[k], counts[k]))
	}
	return strings.Join(parts, ", ")
}
