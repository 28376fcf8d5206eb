// Package docx loads .docx packages into a structural model and rewrites their formatting.
package docx

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// maximum basedOn depth followed before a chain is treated as cyclic
const maxStyleDepth = 32

var headingStyleName = regexp.MustCompile(`(?i)^(heading|t[ií]tulo)\s*([1-9])$`)

type style struct {
	id        string
	name      string
	kind      string
	basedOn   string
	isDefault bool
	pPr       *etree.Element
	rPr       *etree.Element
}

type themeFonts struct {
	major string
	minor string
}

// styleSheet resolves the property cascade of word/styles.xml.
type styleSheet struct {
	ns               ns
	byID             map[string]*style
	defaultParagraph string
	docPPr           *etree.Element
	docRPr           *etree.Element
	theme            themeFonts
}

type runFormat struct {
	font       string
	sizeHalfPt float64
	bold       bool
	italic     bool
}

type paraFormat struct {
	line      float64
	lineRule  string
	firstLine float64 // twips, negative when hanging
	outline   int     // -1 when unset
	jc        string
}

func parseTheme(p *xmlPart) themeFonts {
	var tf themeFonts
	if p == nil {
		return tf
	}
	scheme := p.ns.child(p.ns.child(p.root(), "themeElements"), "fontScheme")
	if major := p.ns.child(p.ns.child(scheme, "majorFont"), "latin"); major != nil {
		tf.major = major.SelectAttrValue("typeface", "")
	}
	if minor := p.ns.child(p.ns.child(scheme, "minorFont"), "latin"); minor != nil {
		tf.minor = minor.SelectAttrValue("typeface", "")
	}
	return tf
}

func parseStyles(p *xmlPart, theme themeFonts) *styleSheet {
	n := p.ns
	s := &styleSheet{ns: n, byID: make(map[string]*style), theme: theme}
	root := p.root()

	if dd := n.child(root, "docDefaults"); dd != nil {
		s.docPPr = n.child(n.child(dd, "pPrDefault"), "pPr")
		s.docRPr = n.child(n.child(dd, "rPrDefault"), "rPr")
	}

	for _, el := range n.children(root, "style") {
		id, _ := n.attr(el, "styleId")
		if id == "" {
			continue
		}
		kind, _ := n.attr(el, "type")
		def, hasDef := n.attr(el, "default")
		st := &style{
			id:        id,
			name:      n.val(n.child(el, "name")),
			kind:      kind,
			basedOn:   n.val(n.child(el, "basedOn")),
			isDefault: hasDef && onOff(def, true),
			pPr:       n.child(el, "pPr"),
			rPr:       n.child(el, "rPr"),
		}
		if _, dup := s.byID[id]; dup {
			continue
		}
		s.byID[id] = st
		if st.isDefault && (kind == "paragraph" || kind == "") && s.defaultParagraph == "" {
			s.defaultParagraph = id
		}
	}
	return s
}

// chain returns the basedOn chain of id, root first. Cycles and unknown
// parents end the chain.
func (s *styleSheet) chain(id string) []*style {
	var out []*style
	seen := make(map[string]bool)
	for id != "" && len(out) < maxStyleDepth {
		st, ok := s.byID[id]
		if !ok || seen[id] {
			break
		}
		seen[id] = true
		out = append(out, st)
		id = st.basedOn
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// paragraphStyle returns the style id governing a paragraph.
func (s *styleSheet) paragraphStyle(pPr *etree.Element) string {
	if id := s.ns.val(s.ns.child(pPr, "pStyle")); id != "" {
		if _, ok := s.byID[id]; ok {
			return id
		}
	}
	return s.defaultParagraph
}

func (s *styleSheet) styleName(id string) string {
	if st, ok := s.byID[id]; ok {
		return st.name
	}
	return ""
}

// resolveParagraph applies docDefaults, the paragraph style chain and the
// direct properties in that order.
func (s *styleSheet) resolveParagraph(pPr *etree.Element) (paraFormat, runFormat, string) {
	pf := paraFormat{line: autoLineUnit, lineRule: "auto", outline: -1}
	rf := runFormat{sizeHalfPt: defaultFontSizePt * 2}

	s.applyPPr(&pf, s.docPPr)
	s.applyRPr(&rf, s.docRPr)

	id := s.paragraphStyle(pPr)
	for _, st := range s.chain(id) {
		s.applyPPr(&pf, st.pPr)
		s.applyRPr(&rf, st.rPr)
	}
	s.applyPPr(&pf, pPr)
	return pf, rf, id
}

// resolveRun layers the character style chain and direct run properties
// over the paragraph-level run format.
func (s *styleSheet) resolveRun(base runFormat, rPr *etree.Element) runFormat {
	rf := base
	if id := s.ns.val(s.ns.child(rPr, "rStyle")); id != "" {
		for _, st := range s.chain(id) {
			s.applyRPr(&rf, st.rPr)
		}
	}
	s.applyRPr(&rf, rPr)
	return rf
}

// headingLevel derives a 1-based heading level from the outline level or,
// failing that, a built-in heading style name in the chain.
func (s *styleSheet) headingLevel(pf paraFormat, styleID string) int {
	if pf.outline >= 0 && pf.outline < 9 {
		return pf.outline + 1
	}
	if pf.outline == 9 {
		return 0
	}
	chain := s.chain(styleID)
	for i := len(chain) - 1; i >= 0; i-- {
		if m := headingStyleName.FindStringSubmatch(strings.TrimSpace(chain[i].name)); m != nil {
			lvl, _ := strconv.Atoi(m[2])
			return lvl
		}
	}
	return 0
}

func (s *styleSheet) applyPPr(dst *paraFormat, pPr *etree.Element) {
	if pPr == nil {
		return
	}
	n := s.ns
	if sp := n.child(pPr, "spacing"); sp != nil {
		if v, ok := n.attr(sp, "line"); ok {
			if line, ok := parseMeasure(v); ok {
				dst.line = line
				dst.lineRule = "auto"
				if rule, ok := n.attr(sp, "lineRule"); ok && rule != "" {
					dst.lineRule = rule
				}
			}
		}
	}
	if ind := n.child(pPr, "ind"); ind != nil {
		if v, ok := n.attr(ind, "hanging"); ok {
			if h, ok := parseMeasure(v); ok {
				dst.firstLine = -h
			}
		} else if v, ok := n.attr(ind, "firstLine"); ok {
			if fl, ok := parseMeasure(v); ok {
				dst.firstLine = fl
			}
		}
	}
	if jc := n.val(n.child(pPr, "jc")); jc != "" {
		dst.jc = jc
	}
	if ol := n.child(pPr, "outlineLvl"); ol != nil {
		if lvl, err := strconv.Atoi(n.val(ol)); err == nil {
			dst.outline = lvl
		}
	}
}

func (s *styleSheet) applyRPr(dst *runFormat, rPr *etree.Element) {
	if rPr == nil {
		return
	}
	n := s.ns
	if f := n.child(rPr, "rFonts"); f != nil {
		if font := s.fontOf(f); font != "" {
			dst.font = font
		}
	}
	if sz := n.child(rPr, "sz"); sz != nil {
		if v, ok := parseMeasure(n.val(sz)); ok {
			dst.sizeHalfPt = v
		}
	}
	if b := n.child(rPr, "b"); b != nil {
		v, ok := n.attr(b, "val")
		dst.bold = onOff(v, ok)
	}
	if i := n.child(rPr, "i"); i != nil {
		v, ok := n.attr(i, "val")
		dst.italic = onOff(v, ok)
	}
}

// fontOf reads the Latin font of w:rFonts. Theme references take precedence
// over explicit names.
func (s *styleSheet) fontOf(f *etree.Element) string {
	n := s.ns
	for _, attr := range []string{"asciiTheme", "hAnsiTheme"} {
		if v, ok := n.attr(f, attr); ok {
			if font := s.theme.resolve(v); font != "" {
				return font
			}
		}
	}
	for _, attr := range []string{"ascii", "hAnsi"} {
		if v, ok := n.attr(f, attr); ok && v != "" {
			return v
		}
	}
	return ""
}

func (t themeFonts) resolve(ref string) string {
	if strings.HasPrefix(ref, "major") {
		return t.major
	}
	if strings.HasPrefix(ref, "minor") {
		return t.minor
	}
	return ""
}
