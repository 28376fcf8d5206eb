package structure

import (
	"regexp"
	"slices"
	"strings"

	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

const (
	// cover pages are looked for within the first paragraphs only
	coverWindow = 40
	// longest index heading, e.g. "LISTA DE FIGURAS Y GRAFICOS"
	maxIndexTitleRunes = 50
)

var (
	// a trailing page reference: "... 5", "RESUMEN ........ iv"
	pageRef = regexp.MustCompile(`(?:\.{2,}|…|\s)\s*(\d+|[ivxlcdm]+)$`)

	indexTitles = []string{
		"INDICE", "CONTENIDO", "TABLA DE CONTENIDO",
		"LISTA DE TABLAS", "LISTA DE FIGURAS", "LISTA DE CUADROS", "LISTA DE GRAFICOS", "LISTA DE ANEXOS",
		"ACRONIMOS", "ABREVIATURAS",
	}
	coverMarks = []string{
		"UNIVERSIDAD NACIONAL DEL ALTIPLANO", "FACULTAD", "ESCUELA PROFESIONAL", "TESIS",
		"PRESENTADA POR", "PRESENTADO POR", "PARA OPTAR", "PUNO",
	}
	frontMatter = []string{
		"DEDICATORIA", "AGRADECIMIENTO", "RESUMEN", "ABSTRACT", "INTRODUCCION", "CAPITULO",
	}
)

// Layout marks the cover page and the hand-typed index entries of a
// document. Both are excluded from body text and from chapter detection.
type Layout struct {
	cover map[int]bool
	index map[int]bool
}

// Analyze scans doc once for its cover page and index entries.
func Analyze(doc *types.StructuralDocument) Layout {
	l := Layout{cover: map[int]bool{}, index: map[int]bool{}}
	l.markCover(doc.Paragraphs)
	l.markIndex(doc.Paragraphs)
	return l
}

// IsCover reports whether p is part of the cover page.
func (l Layout) IsCover(p types.Paragraph) bool { return l.cover[p.Index] }

// IsIndexEntry reports whether p is an entry of a typed index or list.
func (l Layout) IsIndexEntry(p types.Paragraph) bool { return l.index[p.Index] }

func (l Layout) markCover(paragraphs []types.Paragraph) {
	for i, p := range paragraphs {
		if i >= coverWindow {
			return
		}
		norm := Normalize(p.Text())
		if norm == "" || p.Container == types.ContainerTable {
			continue
		}
		if isIndexTitle(p) || hasPrefix(norm, frontMatter) {
			return
		}
		if containsAny(norm, coverMarks) {
			l.cover[p.Index] = true
		}
	}
}

func (l Layout) markIndex(paragraphs []types.Paragraph) {
	inIndex := false
	for _, p := range paragraphs {
		text := strings.TrimSpace(p.Text())
		if text == "" || IsTOC(p) || p.Container == types.ContainerTable {
			continue
		}
		if isIndexTitle(p) {
			inIndex = true
			continue
		}
		if !inIndex {
			continue
		}
		if p.HeadingLevel > 0 || !endsInPage(text) {
			inIndex = false
			continue
		}
		l.index[p.Index] = true
	}
}

// isIndexTitle reports whether p opens an index or a list of tables,
// figures or abbreviations.
func isIndexTitle(p types.Paragraph) bool {
	if !IsTitle(p) {
		return false
	}
	norm := Normalize(p.Text())
	if len([]rune(norm)) >= maxIndexTitleRunes {
		return false
	}
	return hasPrefix(norm, indexTitles)
}

func endsInPage(text string) bool {
	m := pageRef.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	if m[1][0] >= '0' && m[1][0] <= '9' {
		return true
	}
	return FromRoman(m[1]) > 0
}

func hasPrefix(s string, prefixes []string) bool {
	return slices.ContainsFunc(prefixes, func(prefix string) bool { return strings.HasPrefix(s, prefix) })
}

func containsAny(s string, marks []string) bool {
	return slices.ContainsFunc(marks, func(mark string) bool { return strings.Contains(s, mark) })
}
