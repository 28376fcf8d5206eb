// Package validation evaluates a structural document against a rule catalog.
package validation

import (
	"fmt"

	"github.com/vl4dimr/tesis-system-unap/internal/rules"
	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

// MarginName returns the Spanish name of the margin a property constrains.
func MarginName(p rules.Property) string {
	switch p {
	case rules.PropMarginTop:
		return "superior"
	case rules.PropMarginBottom:
		return "inferior"
	case rules.PropMarginLeft:
		return "izquierdo"
	case rules.PropMarginRight:
		return "derecho"
	}
	return ""
}

// MarginValue returns the margin of s that p constrains.
func MarginValue(s types.Section, p rules.Property) float64 {
	switch p {
	case rules.PropMarginTop:
		return s.Margins.TopCm
	case rules.PropMarginBottom:
		return s.Margins.BottomCm
	case rules.PropMarginLeft:
		return s.Margins.LeftCm
	case rules.PropMarginRight:
		return s.Margins.RightCm
	}
	return 0
}

func locateSections(doc *types.StructuralDocument, loc rules.Locator) []types.Section {
	if loc.Section == 0 {
		return doc.Sections
	}
	for _, s := range doc.Sections {
		if s.Index == loc.Section {
			return []types.Section{s}
		}
	}
	return nil
}

func evaluatePageSize(doc *types.StructuralDocument, r rules.Rule) []types.Finding {
	var out []types.Finding
	w, h := r.Expected.Dimensions()
	expected := pageSizeText(r.Expected)
	for _, s := range locateSections(doc, r.Locator) {
		actual := formatNumber(s.PageWidthCm) + " x " + formatNumber(s.PageHeightCm) + "cm"
		valid := within(s.PageWidthCm, w, r.Expected.Tolerance) && within(s.PageHeightCm, h, r.Expected.Tolerance)
		msg := "Tamaño de página correcto: " + expected
		if !valid {
			msg = fmt.Sprintf("Tamaño de página incorrecto: %s (esperado: %s)", actual, expected)
		}
		out = append(out, result(r, sectionLabel(s.Index), valid, actual, expected, msg, types.Locus{Section: s.Index}))
	}
	return out
}

func evaluateMargin(doc *types.StructuralDocument, r rules.Rule) []types.Finding {
	var out []types.Finding
	name := MarginName(r.Property)
	expected := formatCm(r.Expected.Num())
	for _, s := range locateSections(doc, r.Locator) {
		v := MarginValue(s, r.Property)
		actual := formatCm(v)
		valid := within(v, r.Expected.Num(), r.Expected.Tolerance)
		msg := fmt.Sprintf("Margen %s correcto: %s", name, actual)
		if !valid {
			msg = fmt.Sprintf("Margen %s incorrecto: %s (esperado: %s)", name, actual, expected)
		}
		out = append(out, result(r, sectionLabel(s.Index), valid, actual, expected, msg, types.Locus{Section: s.Index}))
	}
	return out
}
