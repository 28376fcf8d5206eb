// Package docx loads .docx packages into a structural model and rewrites their formatting.
package docx

import (
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

// Document is a loaded .docx package. The structural model is read-only;
// the mutators rewrite formatting in the underlying XML and Refresh
// rebuilds the model.
type Document struct {
	pkg    *opcPackage
	body   *xmlPart
	core   *xmlPart
	styles *styleSheet

	sections []*etree.Element
	paras    []paraRef
	model    *types.StructuralDocument
}

type paraRef struct {
	el        *etree.Element
	container string
	section   int
	runs      []*etree.Element
}

type options struct {
	maxPartBytes int64
}

// Option configures Load.
type Option func(*options)

// WithMaxPartBytes bounds the uncompressed size of any part.
func WithMaxPartBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPartBytes = n
		}
	}
}

// Load parses a .docx package. It returns *CorruptDocumentError when the
// bytes are not a readable package and *UnsupportedDocumentError when the
// package uses structure the model cannot represent.
func Load(data []byte, opts ...Option) (*Document, error) {
	o := options{maxPartBytes: DefaultMaxPartBytes}
	for _, opt := range opts {
		opt(&o)
	}

	pkg, err := openPackage(data, o.maxPartBytes)
	if err != nil {
		return nil, err
	}

	body, err := loadPart(pkg, partDocument, nsWordML)
	if err != nil {
		return nil, err
	}
	stylesPart, err := loadPart(pkg, partStyles, nsWordML)
	if err != nil {
		return nil, err
	}

	var theme themeFonts
	if pkg.has(partTheme) {
		tp, err := loadPart(pkg, partTheme, nsDrawing)
		if err != nil {
			return nil, err
		}
		theme = parseTheme(tp)
	}

	d := &Document{
		pkg:    pkg,
		body:   body,
		styles: parseStyles(stylesPart, theme),
	}
	if pkg.has(partCore) {
		if d.core, err = loadPart(pkg, partCore, nsDC); err != nil {
			return nil, err
		}
	}

	if err := d.collect(); err != nil {
		return nil, err
	}
	d.model = d.buildModel()
	return d, nil
}

func loadPart(pkg *opcPackage, name, namespace string) (*xmlPart, error) {
	data, err := pkg.read(name)
	if err != nil {
		return nil, err
	}
	return parsePart(name, data, namespace)
}

// Model returns the structural model of the document.
func (d *Document) Model() *types.StructuralDocument {
	return d.model
}

// Refresh rebuilds the model after mutations.
func (d *Document) Refresh() error {
	if err := d.collect(); err != nil {
		return err
	}
	d.model = d.buildModel()
	return nil
}

// Bytes serializes the package. Parts that were not modified are copied
// unchanged.
func (d *Document) Bytes() ([]byte, error) {
	replaced := make(map[string][]byte)
	for _, p := range []*xmlPart{d.body, d.core} {
		if p == nil || !p.dirty {
			continue
		}
		data, err := p.bytes()
		if err != nil {
			return nil, err
		}
		replaced[p.name] = data
	}
	return d.pkg.write(replaced)
}

// collect walks w:body in reading order, recording paragraphs, their runs
// and the section each belongs to.
func (d *Document) collect() error {
	n := d.body.ns
	root := d.body.root()
	if !n.is(root, "document") {
		return &CorruptDocumentError{Part: partDocument, Message: "root element is not w:document"}
	}
	body := n.child(root, "body")
	if body == nil {
		return &CorruptDocumentError{Part: partDocument, Message: "missing w:body"}
	}

	c := &collector{ns: n}
	if err := c.walk(body, types.ContainerBody); err != nil {
		return err
	}

	final := n.child(body, "sectPr")
	if final == nil {
		return &UnsupportedDocumentError{Part: partDocument, Message: "missing body section properties"}
	}
	c.sections = append(c.sections, final)

	for i, sp := range c.sections {
		if n.child(sp, "pgSz") == nil || n.child(sp, "pgMar") == nil {
			return &UnsupportedDocumentError{
				Part:    partDocument,
				Message: "section " + strconv.Itoa(i+1) + " has no page size or margins",
			}
		}
	}

	d.sections = c.sections
	d.paras = c.paras
	return nil
}

type collector struct {
	ns       ns
	sections []*etree.Element
	paras    []paraRef
}

func (c *collector) walk(parent *etree.Element, container string) error {
	n := c.ns
	for _, el := range parent.ChildElements() {
		if el.Space != string(n) {
			continue
		}
		switch el.Tag {
		case "p":
			c.addParagraph(el, container)
		case "tbl":
			for _, tr := range n.children(el, "tr") {
				for _, tc := range n.children(tr, "tc") {
					if err := c.walk(tc, types.ContainerTable); err != nil {
						return err
					}
				}
			}
		case "sdt":
			inner := container
			if inner == types.ContainerBody {
				inner = types.ContainerControl
			}
			if content := n.child(el, "sdtContent"); content != nil {
				if err := c.walk(content, inner); err != nil {
					return err
				}
			}
		case "customXml":
			if err := c.walk(el, container); err != nil {
				return err
			}
		case "altChunk":
			return &UnsupportedDocumentError{Part: partDocument, Message: "imported content (altChunk) is not supported"}
		}
	}
	return nil
}

func (c *collector) addParagraph(p *etree.Element, container string) {
	ref := paraRef{el: p, container: container, section: len(c.sections) + 1}
	ref.runs = c.runs(p, nil)
	c.paras = append(c.paras, ref)

	if sp := c.ns.child(c.ns.child(p, "pPr"), "sectPr"); sp != nil {
		c.sections = append(c.sections, sp)
	}
}

// runs collects w:r descendants that contribute visible text, skipping
// deleted and moved-from revisions.
func (c *collector) runs(parent *etree.Element, out []*etree.Element) []*etree.Element {
	for _, el := range parent.ChildElements() {
		if el.Space != string(c.ns) {
			continue
		}
		switch el.Tag {
		case "r":
			out = append(out, el)
		case "hyperlink", "ins", "moveTo", "smartTag", "fldSimple", "customXml", "dir", "bdo":
			out = c.runs(el, out)
		case "sdt":
			if content := c.ns.child(el, "sdtContent"); content != nil {
				out = c.runs(content, out)
			}
		}
	}
	return out
}

func (d *Document) buildModel() *types.StructuralDocument {
	m := &types.StructuralDocument{
		Sections:   make([]types.Section, len(d.sections)),
		Paragraphs: make([]types.Paragraph, len(d.paras)),
	}
	n := d.body.ns

	for i, sp := range d.sections {
		pgSz := n.child(sp, "pgSz")
		pgMar := n.child(sp, "pgMar")
		orient, _ := n.attr(pgSz, "orient")
		m.Sections[i] = types.Section{
			Index:        i + 1,
			PageWidthCm:  twipsToCm(d.measure(pgSz, "w")),
			PageHeightCm: twipsToCm(d.measure(pgSz, "h")),
			Landscape:    orient == "landscape",
			Margins: types.Margins{
				TopCm:    twipsToCm(math.Abs(d.measure(pgMar, "top"))),
				BottomCm: twipsToCm(math.Abs(d.measure(pgMar, "bottom"))),
				LeftCm:   twipsToCm(d.measure(pgMar, "left")),
				RightCm:  twipsToCm(d.measure(pgMar, "right")),
			},
		}
	}

	for i, ref := range d.paras {
		m.Paragraphs[i] = d.paragraphModel(i+1, ref)
	}

	if d.core != nil {
		m.Title = d.coreValue(CoreTitle)
		m.Author = d.coreValue(CoreCreator)
	}
	return m
}

func (d *Document) measure(el *etree.Element, local string) float64 {
	v, _ := d.body.ns.attr(el, local)
	f, _ := parseMeasure(v)
	return f
}

func (d *Document) paragraphModel(index int, ref paraRef) types.Paragraph {
	n := d.body.ns
	pPr := n.child(ref.el, "pPr")
	pf, base, styleID := d.styles.resolveParagraph(pPr)

	p := types.Paragraph{
		Index:             index,
		Section:           ref.section,
		StyleID:           styleID,
		StyleName:         d.styles.styleName(styleID),
		Container:         ref.container,
		HeadingLevel:      d.styles.headingLevel(pf, styleID),
		LineRule:          pf.lineRule,
		FirstLineIndentCm: twipsToCm(pf.firstLine),
		Alignment:         alignmentOf(pf.jc),
		Runs:              make([]types.Run, 0, len(ref.runs)),
	}

	sizeHalfPt := base.sizeHalfPt
	sized := false
	for _, r := range ref.runs {
		rf := d.styles.resolveRun(base, n.child(r, "rPr"))
		run := types.Run{
			Text:   runText(n, r),
			Font:   rf.font,
			SizePt: halfPointsToPt(rf.sizeHalfPt),
			Bold:   rf.bold,
			Italic: rf.italic,
		}
		if !sized && strings.TrimSpace(run.Text) != "" {
			sizeHalfPt = rf.sizeHalfPt
			sized = true
		}
		p.Runs = append(p.Runs, run)
	}

	switch pf.lineRule {
	case "exact", "atLeast":
		if sizeHalfPt > 0 {
			p.LineSpacing = (pf.line / twipsPerPoint) / halfPointsToPt(sizeHalfPt)
		}
	default:
		p.LineSpacing = pf.line / autoLineUnit
	}
	return p
}

func runText(n ns, r *etree.Element) string {
	var sb strings.Builder
	for _, el := range r.ChildElements() {
		if el.Space != string(n) {
			continue
		}
		switch el.Tag {
		case "t":
			sb.WriteString(el.Text())
		case "tab", "ptab":
			sb.WriteByte('\t')
		case "br", "cr":
			sb.WriteByte('\n')
		case "noBreakHyphen":
			sb.WriteByte('-')
		}
	}
	return sb.String()
}
