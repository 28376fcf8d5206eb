// Package types provides type definitions for structured data used throughout the thesis document service.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Paragraph containers
const (
	ContainerBody    = "cuerpo"
	ContainerTable   = "tabla"
	ContainerControl = "control"
)

// Paragraph alignments
const (
	AlignLeft    = "izquierda"
	AlignCenter  = "centro"
	AlignRight   = "derecha"
	AlignJustify = "justificado"
)

// StructuralDocument is the read-only model of a loaded .docx package.
// Every measurement is the effective value after style inheritance.
type StructuralDocument struct {
	Sections   []Section   `json:"secciones"`
	Paragraphs []Paragraph `json:"parrafos"`

	// Core properties, empty when docProps/core.xml is absent
	Title  string `json:"titulo,omitempty"`
	Author string `json:"autor,omitempty"`
}

// Section is a page-setup region of the document.
type Section struct {
	Index        int     `json:"indice"` // 1-based
	PageWidthCm  float64 `json:"ancho_cm"`
	PageHeightCm float64 `json:"alto_cm"`
	Landscape    bool    `json:"horizontal,omitempty"`
	Margins      Margins `json:"margenes"`
}

// Margins holds page margins in centimetres.
type Margins struct {
	TopCm    float64 `json:"superior_cm"`
	BottomCm float64 `json:"inferior_cm"`
	LeftCm   float64 `json:"izquierdo_cm"`
	RightCm  float64 `json:"derecho_cm"`
}

// Paragraph is one paragraph in reading order.
type Paragraph struct {
	Index     int    `json:"indice"`  // 1-based reading order
	Section   int    `json:"seccion"` // 1-based owning section
	StyleID   string `json:"estilo_id,omitempty"`
	StyleName string `json:"estilo,omitempty"`
	Container string `json:"contenedor"`

	// HeadingLevel is 1-9 for outline headings, 0 otherwise.
	HeadingLevel int `json:"nivel_titulo,omitempty"`

	// LineSpacing is expressed as a multiple of single spacing.
	LineSpacing       float64 `json:"interlineado"`
	LineRule          string  `json:"regla_interlineado"`
	FirstLineIndentCm float64 `json:"sangria_primera_linea_cm"`
	Alignment         string  `json:"alineacion"`

	Runs []Run `json:"runs,omitempty"`
}

// Run is a contiguous span of text sharing character formatting.
type Run struct {
	Text   string  `json:"texto"`
	Font   string  `json:"fuente,omitempty"`
	SizePt float64 `json:"tamano_pt"`
	Bold   bool    `json:"negrita,omitempty"`
	Italic bool    `json:"cursiva,omitempty"`
}

// Text returns the concatenated text of the paragraph's runs.
func (p Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// HasText reports whether the paragraph carries non-whitespace text.
func (p Paragraph) HasText() bool {
	return strings.TrimSpace(p.Text()) != ""
}

// TextRuns returns the runs that carry non-whitespace text.
func (p Paragraph) TextRuns() []Run {
	var out []Run
	for _, r := range p.Runs {
		if strings.TrimSpace(r.Text) != "" {
			out = append(out, r)
		}
	}
	return out
}

// Text returns the document text, one paragraph per line.
func (d *StructuralDocument) Text() string {
	lines := make([]string, len(d.Paragraphs))
	for i, p := range d.Paragraphs {
		lines[i] = p.Text()
	}
	return strings.Join(lines, "\n")
}

// HasContent reports whether any paragraph carries text.
func (d *StructuralDocument) HasContent() bool {
	for _, p := range d.Paragraphs {
		if p.HasText() {
			return true
		}
	}
	return false
}

// Paragraph returns the paragraph with the given 1-based index.
func (d *StructuralDocument) Paragraph(index int) (Paragraph, bool) {
	if index < 1 || index > len(d.Paragraphs) {
		return Paragraph{}, false
	}
	return d.Paragraphs[index-1], true
}
