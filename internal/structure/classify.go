// Package structure classifies paragraphs into titles and body text and
// recognizes chapter and section headings.
package structure

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

// maximum length of an all-caps paragraph still treated as a title
const maxTitleRunes = 100

var chapterPattern = regexp.MustCompile(`^CAPITULO\s+([IVXLCDM]+|\d+)\b`)

// Chapter is a chapter heading found in the document.
type Chapter struct {
	Numeral   string // Roman, canonical
	Number    int
	Paragraph int // 1-based paragraph index
	Level     int // heading level, 0 when body text
}

// ChapterNumeral extracts the chapter number from a "CAPÍTULO n" heading.
// Arabic numbers are returned as Roman numerals.
func ChapterNumeral(text string) (string, bool) {
	m := chapterPattern.FindStringSubmatch(Normalize(text))
	if m == nil {
		return "", false
	}
	if n, err := strconv.Atoi(m[1]); err == nil {
		r := ToRoman(n)
		return r, r != ""
	}
	if FromRoman(m[1]) == 0 {
		return "", false
	}
	return m[1], true
}

// IsTitle reports whether a paragraph reads as a heading: an outline level,
// a heading or title style, a chapter label, or short all-caps text.
func IsTitle(p types.Paragraph) bool {
	if p.HeadingLevel > 0 {
		return true
	}
	style := strings.ToLower(p.StyleName + " " + p.StyleID)
	if strings.Contains(style, "heading") || strings.Contains(style, "title") || strings.Contains(style, "titulo") || strings.Contains(style, "título") {
		return true
	}
	text := strings.TrimSpace(p.Text())
	if text == "" {
		return false
	}
	if _, ok := ChapterNumeral(text); ok {
		return true
	}
	return IsUpper(text) && len([]rune(text)) < maxTitleRunes
}

// IsTOC reports whether the paragraph belongs to a generated table of contents.
func IsTOC(p types.Paragraph) bool {
	style := strings.ToLower(p.StyleName + " " + p.StyleID)
	return strings.Contains(style, "toc") || strings.Contains(style, "tabla de contenido")
}

// IsBody reports whether a paragraph is body text subject to the text
// formatting rules.
func IsBody(p types.Paragraph) bool {
	return p.HasText() && p.Container == types.ContainerBody && !IsTitle(p) && !IsTOC(p)
}

// BodyParagraphs returns body paragraphs in document order, optionally
// restricted to one section (0 means all). Cover lines and typed index
// entries are not body text.
func BodyParagraphs(doc *types.StructuralDocument, section int) []types.Paragraph {
	layout := Analyze(doc)
	return collect(doc, section, func(p types.Paragraph) bool {
		return IsBody(p) && !layout.IsCover(p) && !layout.IsIndexEntry(p)
	})
}

// Titles returns title paragraphs with text, in document order.
func Titles(doc *types.StructuralDocument, section int) []types.Paragraph {
	layout := Analyze(doc)
	return collect(doc, section, func(p types.Paragraph) bool {
		return isHeading(p) && !layout.IsIndexEntry(p)
	})
}

// ChapterTitles returns the "CAPÍTULO n" headings.
func ChapterTitles(doc *types.StructuralDocument, section int) []types.Paragraph {
	layout := Analyze(doc)
	return collect(doc, section, func(p types.Paragraph) bool {
		if !isHeading(p) || p.Container != types.ContainerBody || layout.IsCover(p) || layout.IsIndexEntry(p) {
			return false
		}
		_, ok := ChapterNumeral(p.Text())
		return ok
	})
}

// SectionTitles returns first-level titles that are not chapter labels,
// such as RESUMEN or CONCLUSIONES.
func SectionTitles(doc *types.StructuralDocument, section int) []types.Paragraph {
	layout := Analyze(doc)
	return collect(doc, section, func(p types.Paragraph) bool {
		if !isHeading(p) || p.HeadingLevel > 1 || p.Container != types.ContainerBody || layout.IsCover(p) || layout.IsIndexEntry(p) {
			return false
		}
		_, ok := ChapterNumeral(p.Text())
		return !ok
	})
}

// Subtitles returns headings of outline level 2 and deeper.
func Subtitles(doc *types.StructuralDocument, section int) []types.Paragraph {
	return collect(doc, section, func(p types.Paragraph) bool {
		return isHeading(p) && p.HeadingLevel >= 2 && p.Container == types.ContainerBody
	})
}

// CoverParagraphs returns the cover page lines.
func CoverParagraphs(doc *types.StructuralDocument, section int) []types.Paragraph {
	layout := Analyze(doc)
	return collect(doc, section, layout.IsCover)
}

// IndexEntries returns the entries of typed indexes and lists of tables or
// figures.
func IndexEntries(doc *types.StructuralDocument, section int) []types.Paragraph {
	layout := Analyze(doc)
	return collect(doc, section, layout.IsIndexEntry)
}

func isHeading(p types.Paragraph) bool {
	return p.HasText() && IsTitle(p) && !IsTOC(p)
}

func collect(doc *types.StructuralDocument, section int, keep func(types.Paragraph) bool) []types.Paragraph {
	var out []types.Paragraph
	for _, p := range doc.Paragraphs {
		if section > 0 && p.Section != section {
			continue
		}
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Chapters returns the chapter labels of the document in order. Generated
// table of contents entries and typed index lines are ignored; the same
// chapter may still appear twice, once as plain text and once as a heading.
func Chapters(doc *types.StructuralDocument) []Chapter {
	layout := Analyze(doc)
	var out []Chapter
	for _, p := range doc.Paragraphs {
		if IsTOC(p) || p.Container == types.ContainerTable || layout.IsIndexEntry(p) {
			continue
		}
		numeral, ok := ChapterNumeral(p.Text())
		if !ok {
			continue
		}
		out = append(out, Chapter{
			Numeral:   numeral,
			Number:    FromRoman(numeral),
			Paragraph: p.Index,
			Level:     p.HeadingLevel,
		})
	}
	return out
}

// MatchesSection reports whether a title names a required section. want
// may list alternatives separated by "|".
func MatchesSection(title, want string) bool {
	norm := Normalize(title)
	if numeral, ok := ChapterNumeral(title); ok {
		norm = strings.TrimSpace(strings.TrimPrefix(norm, "CAPITULO "+numeral))
		norm = strings.TrimLeft(norm, ".:-– ")
	}
	for _, alt := range strings.Split(want, "|") {
		alt = Normalize(alt)
		if alt != "" && strings.Contains(norm, alt) {
			return true
		}
	}
	return false
}
