// Package docx loads .docx packages into a structural model and rewrites their formatting.
package docx

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

// Side names a page margin.
type Side string

// Margin sides, named after their w:pgMar attributes
const (
	MarginTop    Side = "top"
	MarginBottom Side = "bottom"
	MarginLeft   Side = "left"
	MarginRight  Side = "right"
)

// The mutators below change formatting only: they never add, remove or
// reorder paragraphs, runs or text. Each reports whether the XML changed.

func (d *Document) section(index int) (*etree.Element, error) {
	if index < 1 || index > len(d.sections) {
		return nil, &NotFoundError{Kind: "section", Index: index}
	}
	return d.sections[index-1], nil
}

func (d *Document) paragraph(index int) (paraRef, error) {
	if index < 1 || index > len(d.paras) {
		return paraRef{}, &NotFoundError{Kind: "paragraph", Index: index}
	}
	return d.paras[index-1], nil
}

func (d *Document) mark(changed bool) bool {
	if changed {
		d.body.dirty = true
	}
	return changed
}

// SetPageSize sets the page size of a section in portrait orientation.
func (d *Document) SetPageSize(section int, widthCm, heightCm float64) (bool, error) {
	sp, err := d.section(section)
	if err != nil {
		return false, err
	}
	n := d.body.ns
	pgSz := n.ensure(sp, "pgSz", sectPrOrder)
	changed := n.setAttr(pgSz, "w", strconv.Itoa(cmToTwips(widthCm)))
	changed = n.setAttr(pgSz, "h", strconv.Itoa(cmToTwips(heightCm))) || changed
	if widthCm <= heightCm {
		changed = n.removeAttr(pgSz, "orient") || changed
	}
	return d.mark(changed), nil
}

// SetMargin sets one page margin of a section.
func (d *Document) SetMargin(section int, side Side, cm float64) (bool, error) {
	sp, err := d.section(section)
	if err != nil {
		return false, err
	}
	n := d.body.ns
	pgMar := n.ensure(sp, "pgMar", sectPrOrder)
	return d.mark(n.setAttr(pgMar, string(side), strconv.Itoa(cmToTwips(cm)))), nil
}

// SetRunFont sets the Latin font family and size on every run of a
// paragraph as direct formatting. An empty family or a non-positive size
// leaves that attribute as it is.
func (d *Document) SetRunFont(paragraph int, family string, sizePt float64) (bool, error) {
	ref, err := d.paragraph(paragraph)
	if err != nil {
		return false, err
	}
	n := d.body.ns
	changed := false
	for _, r := range ref.runs {
		rPr := n.ensureFirst(r, "rPr")
		if family != "" {
			fonts := n.ensure(rPr, "rFonts", rPrOrder)
			changed = n.removeAttr(fonts, "asciiTheme", "hAnsiTheme", "cstheme") || changed
			for _, attr := range []string{"ascii", "hAnsi", "cs"} {
				changed = n.setAttr(fonts, attr, family) || changed
			}
		}
		if sizePt > 0 {
			size := strconv.Itoa(ptToHalfPoints(sizePt))
			changed = n.setAttr(n.ensure(rPr, "sz", rPrOrder), "val", size) || changed
			changed = n.setAttr(n.ensure(rPr, "szCs", rPrOrder), "val", size) || changed
		}
	}
	return d.mark(changed), nil
}

// SetRunBold turns bold on or off on every run of a paragraph. Bold off is
// written explicitly so a bold paragraph style no longer applies.
func (d *Document) SetRunBold(paragraph int, bold bool) (bool, error) {
	ref, err := d.paragraph(paragraph)
	if err != nil {
		return false, err
	}
	n := d.body.ns
	changed := false
	for _, r := range ref.runs {
		rPr := n.ensureFirst(r, "rPr")
		for _, local := range []string{"b", "bCs"} {
			changed = n.setToggle(rPr, local, bold, rPrOrder) || changed
		}
	}
	return d.mark(changed), nil
}

// SetAlignment sets the paragraph alignment to one of the model values
// (types.AlignLeft and friends).
func (d *Document) SetAlignment(paragraph int, alignment string) (bool, error) {
	ref, err := d.paragraph(paragraph)
	if err != nil {
		return false, err
	}
	jc, ok := jcOf(alignment)
	if !ok {
		return false, fmt.Errorf("unknown alignment %q", alignment)
	}
	n := d.body.ns
	pPr := n.ensureFirst(ref.el, "pPr")
	return d.mark(n.setAttr(n.ensure(pPr, "jc", pPrOrder), "val", jc)), nil
}

// SetLineSpacing sets auto line spacing as a multiple of single spacing.
func (d *Document) SetLineSpacing(paragraph int, multiple float64) (bool, error) {
	ref, err := d.paragraph(paragraph)
	if err != nil {
		return false, err
	}
	n := d.body.ns
	pPr := n.ensureFirst(ref.el, "pPr")
	sp := n.ensure(pPr, "spacing", pPrOrder)
	changed := n.setAttr(sp, "line", strconv.Itoa(multipleToAutoLine(multiple)))
	changed = n.setAttr(sp, "lineRule", "auto") || changed
	return d.mark(changed), nil
}

// SetFirstLineIndent sets the first-line indent, clearing hanging and
// character-based indents that would override it.
func (d *Document) SetFirstLineIndent(paragraph int, cm float64) (bool, error) {
	ref, err := d.paragraph(paragraph)
	if err != nil {
		return false, err
	}
	n := d.body.ns
	pPr := n.ensureFirst(ref.el, "pPr")
	ind := n.ensure(pPr, "ind", pPrOrder)
	changed := n.removeAttr(ind, "hanging", "hangingChars", "firstLineChars")
	changed = n.setAttr(ind, "firstLine", strconv.Itoa(cmToTwips(cm))) || changed
	return d.mark(changed), nil
}

// SetHeadingLevel marks a paragraph as an outline heading (1-based level).
func (d *Document) SetHeadingLevel(paragraph, level int) (bool, error) {
	ref, err := d.paragraph(paragraph)
	if err != nil {
		return false, err
	}
	if level < 1 || level > 9 {
		return false, &NotFoundError{Kind: "heading level", Index: level}
	}
	n := d.body.ns
	pPr := n.ensureFirst(ref.el, "pPr")
	ol := n.ensure(pPr, "outlineLvl", pPrOrder)
	return d.mark(n.setAttr(ol, "val", strconv.Itoa(level-1))), nil
}
