// Package docx loads .docx packages into a structural model and rewrites their formatting.
package docx

import (
	"slices"

	"github.com/beevik/etree"
)

const (
	nsWordML  = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsDrawing = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsDC      = "http://purl.org/dc/elements/1.1/"
)

// Child order of w:pPr, w:rPr and w:sectPr in the WordprocessingML schema.
// New elements are inserted so the result stays schema valid.
var (
	pPrOrder = []string{
		"pStyle", "keepNext", "keepLines", "pageBreakBefore", "framePr", "widowControl",
		"numPr", "suppressLineNumbers", "pBdr", "shd", "tabs", "suppressAutoHyphens",
		"kinsoku", "wordWrap", "overflowPunct", "topLinePunct", "autoSpaceDE", "autoSpaceDN",
		"bidi", "adjustRightInd", "snapToGrid", "spacing", "ind", "contextualSpacing",
		"mirrorIndents", "suppressOverlap", "jc", "textDirection", "textAlignment",
		"textboxTightWrap", "outlineLvl", "divId", "cnfStyle", "rPr", "sectPr", "pPrChange",
	}
	rPrOrder = []string{
		"rStyle", "rFonts", "b", "bCs", "i", "iCs", "caps", "smallCaps", "strike", "dstrike",
		"outline", "shadow", "emboss", "imprint", "noProof", "snapToGrid", "vanish",
		"webHidden", "color", "spacing", "w", "kern", "position", "sz", "szCs", "highlight",
		"u", "effect", "bdr", "shd", "fitText", "vertAlign", "rtl", "cs", "em", "lang",
		"eastAsianLayout", "specVanish", "oMath",
	}
	sectPrOrder = []string{
		"headerReference", "footerReference", "footnotePr", "endnotePr", "type", "pgSz",
		"pgMar", "paperSrc", "pgBorders", "lnNumType", "pgNumType", "cols", "formProt",
		"vAlign", "noEndnote", "titlePg", "textDirection", "bidi", "rtlGutter", "docGrid",
		"printerSettings", "sectPrChange",
	}
)

// xmlPart is a parsed package part together with the prefix its main
// namespace is bound to.
type xmlPart struct {
	name  string
	doc   *etree.Document
	ns    ns
	dirty bool
}

func parsePart(name string, data []byte, namespace string) (*xmlPart, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &CorruptDocumentError{Part: name, Message: "malformed XML", Cause: err}
	}
	root := doc.Root()
	if root == nil {
		return nil, &CorruptDocumentError{Part: name, Message: "no root element"}
	}
	return &xmlPart{name: name, doc: doc, ns: prefixFor(root, namespace)}, nil
}

func (p *xmlPart) root() *etree.Element {
	return p.doc.Root()
}

func (p *xmlPart) bytes() ([]byte, error) {
	return p.doc.WriteToBytes()
}

// prefixFor finds the prefix bound to namespace on root. Word always uses
// explicit prefixes but the default namespace is honored too.
func prefixFor(root *etree.Element, namespace string) ns {
	for _, a := range root.Attr {
		if a.Space == "xmlns" && a.Value == namespace {
			return ns(a.Key)
		}
	}
	return ns("")
}

// ns is a namespace prefix; its methods address elements and attributes in
// that namespace.
type ns string

func (n ns) q(local string) string {
	if n == "" {
		return local
	}
	return string(n) + ":" + local
}

func (n ns) is(el *etree.Element, local string) bool {
	return el != nil && el.Space == string(n) && el.Tag == local
}

func (n ns) child(el *etree.Element, local string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if n.is(c, local) {
			return c
		}
	}
	return nil
}

func (n ns) children(el *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if n.is(c, local) {
			out = append(out, c)
		}
	}
	return out
}

func (n ns) attr(el *etree.Element, local string) (string, bool) {
	if el == nil {
		return "", false
	}
	for _, a := range el.Attr {
		if a.Space == string(n) && a.Key == local {
			return a.Value, true
		}
	}
	return "", false
}

func (n ns) val(el *etree.Element) string {
	v, _ := n.attr(el, "val")
	return v
}

// setAttr sets the attribute and reports whether its value changed.
func (n ns) setAttr(el *etree.Element, local, value string) bool {
	for i := range el.Attr {
		a := &el.Attr[i]
		if a.Space == string(n) && a.Key == local {
			if a.Value == value {
				return false
			}
			a.Value = value
			return true
		}
	}
	el.CreateAttr(n.q(local), value)
	return true
}

func (n ns) removeAttr(el *etree.Element, locals ...string) bool {
	removed := false
	kept := el.Attr[:0]
	for _, a := range el.Attr {
		if a.Space == string(n) && slices.Contains(locals, a.Key) {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	el.Attr = kept
	return removed
}

// ensure returns the first child named local, creating it at its schema
// position when missing.
func (n ns) ensure(parent *etree.Element, local string, order []string) *etree.Element {
	if c := n.child(parent, local); c != nil {
		return c
	}
	el := etree.NewElement(n.q(local))
	rank := slices.Index(order, local)
	for _, c := range parent.ChildElements() {
		if c.Space != string(n) {
			continue
		}
		if r := slices.Index(order, c.Tag); rank >= 0 && r > rank {
			parent.InsertChildAt(c.Index(), el)
			return el
		}
	}
	parent.AddChild(el)
	return el
}

// ensureFirst returns the child named local, creating it as the first child
// element. Used for w:pPr in w:p and w:rPr in w:r.
func (n ns) ensureFirst(parent *etree.Element, local string) *etree.Element {
	if c := n.child(parent, local); c != nil {
		return c
	}
	el := etree.NewElement(n.q(local))
	if kids := parent.ChildElements(); len(kids) > 0 {
		parent.InsertChildAt(kids[0].Index(), el)
	} else {
		parent.AddChild(el)
	}
	return el
}

// setToggle sets an on/off property such as w:b. On is written as the bare
// element, off as val="0".
func (n ns) setToggle(parent *etree.Element, local string, on bool, order []string) bool {
	el := n.child(parent, local)
	if el == nil {
		el = n.ensure(parent, local, order)
		if !on {
			n.setAttr(el, "val", "0")
		}
		return true
	}
	v, present := n.attr(el, "val")
	if onOff(v, present) == on {
		return false
	}
	if on {
		return n.removeAttr(el, "val")
	}
	return n.setAttr(el, "val", "0")
}
