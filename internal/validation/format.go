// Package validation evaluates a structural document against a rule catalog.
package validation

import (
	"strconv"
	"strings"

	"github.com/vl4dimr/tesis-system-unap/internal/rules"
)

// Finding values are rendered with fixed precision so reports are
// byte-for-byte reproducible.

// formatNumber renders v with two decimals, dropping a trailing zero:
// 2 -> "2.0", 1.25 -> "1.25".
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimSuffix(s, "0")
	if s == "-0.0" {
		s = "0.0"
	}
	return s
}

func formatCm(v float64) string {
	return formatNumber(v) + "cm"
}

func formatPt(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "pt"
}

func pageSizeText(e rules.Expected) string {
	w, h := e.Dimensions()
	s := formatNumber(w) + " x " + formatNumber(h) + "cm"
	if e.Label != "" {
		s = e.Label + " (" + s + ")"
	}
	return s
}

func fontText(family string, size float64) string {
	parts := make([]string, 0, 2)
	if family != "" {
		parts = append(parts, family)
	}
	if size > 0 {
		parts = append(parts, formatPt(size))
	}
	return strings.Join(parts, " ")
}

func joinSequence(seq []string) string {
	names := make([]string, len(seq))
	for i, s := range seq {
		names[i] = primaryName(s)
	}
	return strings.Join(names, ", ")
}

// primaryName returns the first of a "|"-separated list of alternatives.
func primaryName(s string) string {
	name, _, _ := strings.Cut(s, "|")
	return strings.TrimSpace(name)
}

func sectionLabel(i int) string {
	return "Seccion " + strconv.Itoa(i)
}

func paragraphLabel(i int) string {
	return "Parrafo " + strconv.Itoa(i)
}

// slack absorbs the rounding of values stored in twips, half-points and
// 240ths of a line, so a value written by the formatter always passes.
const slack = 0.0025

// within reports |actual-expected| <= tolerance.
func within(actual, expected, tolerance float64) bool {
	d := actual - expected
	if d < 0 {
		d = -d
	}
	return d <= tolerance+slack
}
