// Package docxtest builds small .docx packages in memory for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strings"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

// Builder assembles a document. The zero configuration returned by New
// satisfies the UNAP thesis format: A4, margins 3.5/2.5/2.5/2.5 cm, Times
// New Roman 12 pt, double spacing and a 1.25 cm first-line indent.
type Builder struct {
	pageW, pageH    float64
	top, bottom     float64
	left, right     float64
	font            string
	size            float64
	spacing         float64
	indent          float64
	themeFont       string
	core            bool
	title, author   string
	omitStyles      bool
	omitBodySection bool
	body            []string
}

// New returns a builder with compliant page and text defaults.
func New() *Builder {
	return &Builder{
		pageW: 21.0, pageH: 29.7,
		top: 3.5, bottom: 2.5, left: 2.5, right: 2.5,
		font:    "Times New Roman",
		size:    12,
		spacing: 2.0,
		indent:  1.25,
		core:    true,
	}
}

// Thesis returns a builder holding a complete compliant thesis skeleton.
func Thesis() *Builder {
	b := New().Core("Tesis de prueba", "Autor de prueba")
	b.Heading("RESUMEN").Paragraph(Lorem)
	b.Heading("ABSTRACT").Paragraph("This thesis studies the effect of altitude on crops.")
	chapters := []struct{ numeral, title string }{
		{"I", "INTRODUCCIÓN"},
		{"II", "REVISIÓN DE LITERATURA"},
		{"III", "MATERIALES Y MÉTODOS"},
		{"IV", "RESULTADOS Y DISCUSIÓN"},
	}
	for _, ch := range chapters {
		b.Heading("CAPÍTULO " + ch.numeral).Heading(ch.title).Paragraph(Lorem)
	}
	b.Heading("CONCLUSIONES").Paragraph("Se concluye que el rendimiento depende de la altitud.")
	b.Heading("RECOMENDACIONES").Paragraph("Se recomienda ampliar el estudio a otras regiones.")
	b.Heading("REFERENCIAS BIBLIOGRÁFICAS").Paragraph("Quispe, J. (2020). Cultivos andinos. Puno: UNA.")
	return b
}

// Lorem is a mixed-case body paragraph.
const Lorem = "El presente trabajo de investigación analiza la producción de quinua en el altiplano de Puno durante la campaña agrícola."

// PageSize sets the page size in centimetres.
func (b *Builder) PageSize(widthCm, heightCm float64) *Builder {
	b.pageW, b.pageH = widthCm, heightCm
	return b
}

// Margins sets the page margins in centimetres.
func (b *Builder) Margins(top, bottom, left, right float64) *Builder {
	b.top, b.bottom, b.left, b.right = top, bottom, left, right
	return b
}

// Font sets the font of the Normal style.
func (b *Builder) Font(family string, sizePt float64) *Builder {
	b.font, b.size = family, sizePt
	return b
}

// ThemeFont makes the Normal style reference the theme minor font and
// declares family as that font in theme1.xml.
func (b *Builder) ThemeFont(family string) *Builder {
	b.themeFont = family
	return b
}

// Spacing sets the Normal style line spacing multiple.
func (b *Builder) Spacing(multiple float64) *Builder {
	b.spacing = multiple
	return b
}

// Indent sets the Normal style first-line indent in centimetres.
func (b *Builder) Indent(cm float64) *Builder {
	b.indent = cm
	return b
}

// Core sets the core title and author.
func (b *Builder) Core(title, author string) *Builder {
	b.core, b.title, b.author = true, title, author
	return b
}

// NoCoreProperties omits docProps/core.xml.
func (b *Builder) NoCoreProperties() *Builder {
	b.core = false
	return b
}

// NoStyles omits word/styles.xml.
func (b *Builder) NoStyles() *Builder {
	b.omitStyles = true
	return b
}

// NoBodySection omits w:body/w:sectPr.
func (b *Builder) NoBodySection() *Builder {
	b.omitBodySection = true
	return b
}

type para struct {
	style   string
	font    string
	size    float64
	bold    *bool
	jc      string
	spacing float64
	exact   float64
	indent  *float64
	hanging float64
	outline int
	runs    []string
}

// ParagraphOption adjusts one paragraph's direct formatting.
type ParagraphOption func(*para)

// WithFont sets direct run fonts.
func WithFont(family string, sizePt float64) ParagraphOption {
	return func(p *para) { p.font, p.size = family, sizePt }
}

// WithSize sets a direct run size without touching the font family.
func WithSize(sizePt float64) ParagraphOption {
	return func(p *para) { p.size = sizePt }
}

// WithBold sets direct run bold on or off.
func WithBold(bold bool) ParagraphOption {
	return func(p *para) { p.bold = &bold }
}

// WithAlignment sets the direct w:jc value, e.g. "center" or "both".
func WithAlignment(jc string) ParagraphOption {
	return func(p *para) { p.jc = jc }
}

// WithSpacing sets direct auto line spacing.
func WithSpacing(multiple float64) ParagraphOption {
	return func(p *para) { p.spacing = multiple }
}

// WithExactSpacing sets direct exact line spacing in points.
func WithExactSpacing(pt float64) ParagraphOption {
	return func(p *para) { p.exact = pt }
}

// WithIndent sets a direct first-line indent.
func WithIndent(cm float64) ParagraphOption {
	return func(p *para) { p.indent = &cm }
}

// WithHanging sets a direct hanging indent.
func WithHanging(cm float64) ParagraphOption {
	return func(p *para) { p.hanging = cm }
}

// WithStyle sets the paragraph style id.
func WithStyle(id string) ParagraphOption {
	return func(p *para) { p.style = id }
}

// WithOutline sets a direct 1-based outline level.
func WithOutline(level int) ParagraphOption {
	return func(p *para) { p.outline = level }
}

// WithRuns splits the paragraph text into several runs.
func WithRuns(texts ...string) ParagraphOption {
	return func(p *para) { p.runs = texts }
}

// Paragraph appends a paragraph in the Normal style.
func (b *Builder) Paragraph(text string, opts ...ParagraphOption) *Builder {
	p := &para{runs: []string{text}}
	for _, opt := range opts {
		opt(p)
	}
	b.body = append(b.body, p.xml())
	return b
}

// Heading appends a paragraph in the Heading1 style. Chapter labels
// ("CAPÍTULO n") use the Capitulo style, a 16 pt Heading1.
func (b *Builder) Heading(text string) *Builder {
	if strings.HasPrefix(strings.ToUpper(text), "CAPÍTULO") {
		return b.Paragraph(text, WithStyle("Capitulo"))
	}
	return b.Paragraph(text, WithStyle("Heading1"))
}

// Subheading appends a paragraph in the Heading2 style.
func (b *Builder) Subheading(text string, opts ...ParagraphOption) *Builder {
	return b.Paragraph(text, append([]ParagraphOption{WithStyle("Heading2")}, opts...)...)
}

// Table appends a one-row table with one paragraph per cell.
func (b *Builder) Table(cells ...string) *Builder {
	var sb strings.Builder
	sb.WriteString("<w:tbl><w:tblPr/><w:tr>")
	for _, c := range cells {
		sb.WriteString("<w:tc>")
		sb.WriteString((&para{runs: []string{c}}).xml())
		sb.WriteString("</w:tc>")
	}
	sb.WriteString("</w:tr></w:tbl>")
	b.body = append(b.body, sb.String())
	return b
}

// SectionBreak closes the current section with the current page setup.
func (b *Builder) SectionBreak() *Builder {
	b.body = append(b.body, "<w:p><w:pPr>"+b.sectPr()+"</w:pPr></w:p>")
	return b
}

// Raw appends a literal w:body fragment.
func (b *Builder) Raw(fragment string) *Builder {
	b.body = append(b.body, fragment)
	return b
}

// Bytes returns the packaged document.
func (b *Builder) Bytes() []byte {
	files := []File{
		{"[Content_Types].xml", b.contentTypes()},
		{"_rels/.rels", b.rootRels()},
		{"word/document.xml", b.document()},
		{"word/_rels/document.xml.rels", b.documentRels()},
	}
	if !b.omitStyles {
		files = append(files, File{"word/styles.xml", b.styles()})
	}
	if b.themeFont != "" {
		files = append(files, File{"word/theme/theme1.xml", b.theme()})
	}
	if b.core {
		files = append(files, File{"docProps/core.xml", b.coreXML()})
	}
	return Zip(files...)
}

// File is one zip entry.
type File struct {
	Name string
	Body string
}

// Zip packs files into a zip archive.
func Zip(files ...File) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(f.Body)); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func twips(cm float64) int {
	return int(math.Round(cm * 1440 / 2.54))
}

func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

func (p *para) xml() string {
	var ppr strings.Builder
	if p.style != "" {
		fmt.Fprintf(&ppr, `<w:pStyle w:val="%s"/>`, p.style)
	}
	switch {
	case p.exact > 0:
		fmt.Fprintf(&ppr, `<w:spacing w:line="%d" w:lineRule="exact"/>`, int(math.Round(p.exact*20)))
	case p.spacing > 0:
		fmt.Fprintf(&ppr, `<w:spacing w:line="%d" w:lineRule="auto"/>`, int(math.Round(p.spacing*240)))
	}
	switch {
	case p.hanging > 0:
		fmt.Fprintf(&ppr, `<w:ind w:left="%d" w:hanging="%d"/>`, twips(p.hanging), twips(p.hanging))
	case p.indent != nil:
		fmt.Fprintf(&ppr, `<w:ind w:firstLine="%d"/>`, twips(*p.indent))
	}
	if p.jc != "" {
		fmt.Fprintf(&ppr, `<w:jc w:val="%s"/>`, p.jc)
	}
	if p.outline > 0 {
		fmt.Fprintf(&ppr, `<w:outlineLvl w:val="%d"/>`, p.outline-1)
	}

	var rpr strings.Builder
	if p.font != "" {
		fmt.Fprintf(&rpr, `<w:rFonts w:ascii="%s" w:hAnsi="%s"/>`, p.font, p.font)
	}
	if p.bold != nil {
		if *p.bold {
			rpr.WriteString(`<w:b/>`)
		} else {
			rpr.WriteString(`<w:b w:val="0"/>`)
		}
	}
	if p.size > 0 {
		fmt.Fprintf(&rpr, `<w:sz w:val="%d"/>`, int(math.Round(p.size*2)))
	}

	var sb strings.Builder
	sb.WriteString("<w:p>")
	if ppr.Len() > 0 {
		sb.WriteString("<w:pPr>" + ppr.String() + "</w:pPr>")
	}
	for _, text := range p.runs {
		sb.WriteString("<w:r>")
		if rpr.Len() > 0 {
			sb.WriteString("<w:rPr>" + rpr.String() + "</w:rPr>")
		}
		fmt.Fprintf(&sb, `<w:t xml:space="preserve">%s</w:t>`, escape(text))
		sb.WriteString("</w:r>")
	}
	sb.WriteString("</w:p>")
	return sb.String()
}

func (b *Builder) sectPr() string {
	return fmt.Sprintf(`<w:sectPr><w:pgSz w:w="%d" w:h="%d"/><w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="709" w:footer="709" w:gutter="0"/><w:cols w:space="708"/></w:sectPr>`,
		twips(b.pageW), twips(b.pageH), twips(b.top), twips(b.right), twips(b.bottom), twips(b.left))
}

func (b *Builder) document() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(`<w:document ` + wordNS + `><w:body>`)
	for _, frag := range b.body {
		sb.WriteString(frag)
	}
	if !b.omitBodySection {
		sb.WriteString(b.sectPr())
	}
	sb.WriteString(`</w:body></w:document>`)
	return sb.String()
}

func (b *Builder) styles() string {
	fonts := fmt.Sprintf(`<w:rFonts w:ascii="%s" w:hAnsi="%s"/>`, b.font, b.font)
	if b.themeFont != "" {
		fonts = `<w:rFonts w:asciiTheme="minorHAnsi" w:hAnsiTheme="minorHAnsi"/>`
	}
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:styles ` + wordNS + `>` +
		`<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri"/><w:sz w:val="22"/></w:rPr></w:rPrDefault>` +
		`<w:pPrDefault><w:pPr><w:spacing w:after="160" w:line="259" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>` +
		`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/>` +
		fmt.Sprintf(`<w:pPr><w:spacing w:after="0" w:line="%d" w:lineRule="auto"/><w:ind w:firstLine="%d"/><w:jc w:val="both"/></w:pPr>`,
			int(math.Round(b.spacing*240)), twips(b.indent)) +
		fmt.Sprintf(`<w:rPr>%s<w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr></w:style>`,
			fonts, int(math.Round(b.size*2)), int(math.Round(b.size*2))) +
		`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>` +
		`<w:pPr><w:keepNext/><w:ind w:firstLine="0"/><w:jc w:val="center"/><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:sz w:val="28"/></w:rPr></w:style>` +
		`<w:style w:type="paragraph" w:styleId="Capitulo"><w:name w:val="Capitulo"/><w:basedOn w:val="Heading1"/><w:next w:val="Heading1"/><w:rPr><w:sz w:val="32"/></w:rPr></w:style>` +
		`<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/>` +
		`<w:pPr><w:keepNext/><w:ind w:firstLine="0"/><w:jc w:val="left"/><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:b/></w:rPr></w:style>` +
		`<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:pPr><w:jc w:val="center"/></w:pPr><w:rPr><w:sz w:val="32"/></w:rPr></w:style>` +
		`<w:style w:type="paragraph" w:styleId="TOC1"><w:name w:val="toc 1"/><w:basedOn w:val="Normal"/></w:style>` +
		`<w:style w:type="character" w:styleId="Emphasis"><w:name w:val="Emphasis"/><w:rPr><w:i/></w:rPr></w:style>` +
		`<w:style w:type="paragraph" w:styleId="LoopA"><w:name w:val="Loop A"/><w:basedOn w:val="LoopB"/></w:style>` +
		`<w:style w:type="paragraph" w:styleId="LoopB"><w:name w:val="Loop B"/><w:basedOn w:val="LoopA"/><w:rPr><w:sz w:val="30"/></w:rPr></w:style>` +
		`</w:styles>`
}

func (b *Builder) theme() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Office Theme"><a:themeElements>` +
		`<a:fontScheme name="Office"><a:majorFont><a:latin typeface="Calibri Light"/></a:majorFont>` +
		fmt.Sprintf(`<a:minorFont><a:latin typeface="%s"/></a:minorFont></a:fontScheme>`, escape(b.themeFont)) +
		`</a:themeElements></a:theme>`
}

func (b *Builder) coreXML() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		fmt.Sprintf(`<dc:title>%s</dc:title><dc:creator>%s</dc:creator>`, escape(b.title), escape(b.author)) +
		`</cp:coreProperties>`
}

func (b *Builder) contentTypes() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	sb.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	sb.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	sb.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	if !b.omitStyles {
		sb.WriteString(`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>`)
	}
	if b.themeFont != "" {
		sb.WriteString(`<Override PartName="/word/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	}
	if b.core {
		sb.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	}
	sb.WriteString(`</Types>`)
	return sb.String()
}

func (b *Builder) rootRels() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	sb.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>`)
	if b.core {
		sb.WriteString(`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>`)
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

func (b *Builder) documentRels() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	if !b.omitStyles {
		sb.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`)
	}
	if b.themeFont != "" {
		sb.WriteString(`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="theme/theme1.xml"/>`)
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}
