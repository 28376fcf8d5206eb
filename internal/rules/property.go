// Package rules loads and exposes the immutable formatting rule catalog.
package rules

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/vl4dimr/tesis-system-unap/internal/structure"
)

// Property is the measured property a rule constrains. Each property has
// exactly one evaluator and at most one corrector.
type Property string

// Known properties
const (
	PropPageSize        Property = "pagina.tamano"
	PropMarginTop       Property = "pagina.margen_superior"
	PropMarginBottom    Property = "pagina.margen_inferior"
	PropMarginLeft      Property = "pagina.margen_izquierdo"
	PropMarginRight     Property = "pagina.margen_derecho"
	PropFont            Property = "parrafo.fuente"
	PropLineSpacing     Property = "parrafo.interlineado"
	PropFirstLineIndent Property = "parrafo.sangria_primera_linea"
	PropBold            Property = "parrafo.negrita"
	PropAlignment       Property = "parrafo.alineacion"
	PropChapters        Property = "documento.capitulos"
	PropSections        Property = "documento.secciones"
	PropFontFamilies    Property = "documento.fuentes"
)

// Phase orders corrections when formatting.
type Phase int

// Formatting phases, in application order
const (
	PhasePage Phase = iota + 1
	PhaseMargins
	PhaseFonts
	PhaseSpacing
	PhaseIndentation
	PhaseAlignment
	PhaseHeadings
)

// Phases returns the formatting phases in application order.
func Phases() []Phase {
	return []Phase{PhasePage, PhaseMargins, PhaseFonts, PhaseSpacing, PhaseIndentation, PhaseAlignment, PhaseHeadings}
}

type propertySpec struct {
	scopes      []Scope
	phase       Phase
	correctable bool
	check       func(Expected) error
}

var paragraphScopes = []Scope{ScopeBody, ScopeTitles, ScopeChapterTitles, ScopeSectionTitles, ScopeSubtitles, ScopeCover, ScopeIndex}

var properties = map[Property]propertySpec{
	PropPageSize:        {[]Scope{ScopeSections}, PhasePage, true, needDimensions},
	PropMarginTop:       {[]Scope{ScopeSections}, PhaseMargins, true, needNonNegative},
	PropMarginBottom:    {[]Scope{ScopeSections}, PhaseMargins, true, needNonNegative},
	PropMarginLeft:      {[]Scope{ScopeSections}, PhaseMargins, true, needNonNegative},
	PropMarginRight:     {[]Scope{ScopeSections}, PhaseMargins, true, needNonNegative},
	PropFont:            {paragraphScopes, PhaseFonts, true, needFont},
	PropLineSpacing:     {paragraphScopes, PhaseSpacing, true, needPositive},
	PropFirstLineIndent: {paragraphScopes, PhaseIndentation, true, needValue},
	PropBold:            {paragraphScopes, PhaseFonts, true, needBold},
	PropAlignment:       {paragraphScopes, PhaseAlignment, true, needAlignment},
	PropChapters:        {[]Scope{ScopeDocument}, PhaseHeadings, true, needNumerals},
	PropSections:        {[]Scope{ScopeDocument}, PhaseHeadings, false, needSequence},
	PropFontFamilies:    {[]Scope{ScopeDocument}, PhaseFonts, false, needPositive},
}

// Properties returns every known property, sorted.
func Properties() []Property {
	out := make([]Property, 0, len(properties))
	for p := range properties {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Known reports whether p has an evaluator.
func (p Property) Known() bool {
	_, ok := properties[p]
	return ok
}

// Phase returns the formatting phase of p, 0 when unknown.
func (p Property) Phase() Phase {
	return properties[p].phase
}

// Correctable reports whether the formatter has a corrector for p.
func (p Property) Correctable() bool {
	return properties[p].correctable
}

func (p Property) allows(s Scope) bool {
	return slices.Contains(properties[p].scopes, s)
}

func needValue(e Expected) error {
	if e.Value == nil {
		return errors.New("esperado.valor is required")
	}
	return nil
}

func needNonNegative(e Expected) error {
	if err := needValue(e); err != nil {
		return err
	}
	if *e.Value < 0 {
		return errors.New("esperado.valor must not be negative")
	}
	return nil
}

func needPositive(e Expected) error {
	if err := needValue(e); err != nil {
		return err
	}
	if *e.Value <= 0 {
		return errors.New("esperado.valor must be positive")
	}
	return nil
}

func needDimensions(e Expected) error {
	if e.Width == nil || e.Height == nil {
		return errors.New("esperado.ancho and esperado.alto are required")
	}
	return nil
}

func needFont(e Expected) error {
	if e.Family == "" && e.Size == nil {
		return errors.New("esperado.familia or esperado.tamano is required")
	}
	return nil
}

func needBold(e Expected) error {
	if e.Bold == nil {
		return errors.New("esperado.negrita is required")
	}
	return nil
}

func needAlignment(e Expected) error {
	if e.Alignment == "" {
		return errors.New("esperado.alineacion is required")
	}
	return nil
}

func needSequence(e Expected) error {
	if len(e.Sequence) == 0 {
		return errors.New("esperado.secuencia is required")
	}
	return nil
}

func needNumerals(e Expected) error {
	if err := needSequence(e); err != nil {
		return err
	}
	for _, s := range e.Sequence {
		if structure.FromRoman(s) == 0 {
			return fmt.Errorf("esperado.secuencia: %q is not a Roman numeral", s)
		}
	}
	return nil
}
