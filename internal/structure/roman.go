// Package structure classifies paragraphs into titles and body text and
// recognizes chapter and section headings.
package structure

import "strings"

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// ToRoman formats n (1-3999) as a Roman numeral.
func ToRoman(n int) string {
	if n <= 0 || n >= 4000 {
		return ""
	}
	var sb strings.Builder
	for _, e := range romanTable {
		for n >= e.value {
			sb.WriteString(e.symbol)
			n -= e.value
		}
	}
	return sb.String()
}

// FromRoman parses a canonical Roman numeral, returning 0 when s is not one.
func FromRoman(s string) int {
	s = strings.ToUpper(s)
	n, rest := 0, s
	for _, e := range romanTable {
		for strings.HasPrefix(rest, e.symbol) {
			n += e.value
			rest = rest[len(e.symbol):]
		}
	}
	if rest != "" || n == 0 || ToRoman(n) != s {
		return 0
	}
	return n
}
