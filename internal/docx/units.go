// Package docx loads .docx packages into a structural model and rewrites their formatting.
package docx

import (
	"math"
	"strconv"

	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

const (
	twipsPerCm    = 1440 / 2.54
	twipsPerPoint = 20
	// single line spacing in the auto line rule
	autoLineUnit = 240
	// font size used when no level of the cascade sets one
	defaultFontSizePt = 10
)

func twipsToCm(tw float64) float64 {
	return tw / twipsPerCm
}

func cmToTwips(cm float64) int {
	return int(math.Round(cm * twipsPerCm))
}

func halfPointsToPt(hp float64) float64 {
	return hp / 2
}

func ptToHalfPoints(pt float64) int {
	return int(math.Round(pt * 2))
}

func multipleToAutoLine(m float64) int {
	return int(math.Round(m * autoLineUnit))
}

// parseMeasure reads an OOXML measurement attribute. Values are integers in
// the element's native unit; universal measures ("2.5cm", "12pt") are also
// accepted and converted to twips.
func parseMeasure(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if len(s) < 3 {
		return 0, false
	}
	num, unit := s[:len(s)-2], s[len(s)-2:]
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	switch unit {
	case "cm":
		return v * twipsPerCm, true
	case "mm":
		return v * twipsPerCm / 10, true
	case "in":
		return v * 1440, true
	case "pt":
		return v * twipsPerPoint, true
	case "pc", "pi":
		return v * 12 * twipsPerPoint, true
	}
	return 0, false
}

// onOff reads an ST_OnOff value; an element without w:val means on.
func onOff(val string, present bool) bool {
	if !present {
		return true
	}
	switch val {
	case "0", "false", "off":
		return false
	}
	return true
}

// alignmentOf maps a w:jc value to the model alignment. Unset means left.
func alignmentOf(jc string) string {
	switch jc {
	case "", "left", "start":
		return types.AlignLeft
	case "center":
		return types.AlignCenter
	case "right", "end":
		return types.AlignRight
	}
	return types.AlignJustify
}

// jcOf is the inverse of alignmentOf.
func jcOf(alignment string) (string, bool) {
	switch alignment {
	case types.AlignLeft:
		return "left", true
	case types.AlignCenter:
		return "center", true
	case types.AlignRight:
		return "right", true
	case types.AlignJustify:
		return "both", true
	}
	return "", false
}
