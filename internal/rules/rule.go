// Package rules loads and exposes the immutable formatting rule catalog.
package rules

import "github.com/vl4dimr/tesis-system-unap/internal/types"

// Scope selects the elements a rule is evaluated on.
type Scope string

// Rule scopes
const (
	ScopeSections Scope = "secciones"
	ScopeBody     Scope = "parrafos_cuerpo"
	ScopeTitles   Scope = "titulos"
	ScopeDocument Scope = "documento"

	ScopeChapterTitles Scope = "titulos_capitulo"
	ScopeSectionTitles Scope = "titulos_seccion"
	ScopeSubtitles     Scope = "subtitulos"
	ScopeCover         Scope = "portada"
	ScopeIndex         Scope = "indices"
)

// Units of expected values
const (
	UnitCm       = "cm"
	UnitPt       = "pt"
	UnitMultiple = "multiplo"
)

// Locator restricts a rule to a scope and optionally to one section. An
// optional locator that selects nothing yields no findings instead of an
// error: a thesis need not have a cover page or an index.
type Locator struct {
	Scope    Scope `yaml:"ambito" json:"ambito" validate:"required,oneof=secciones parrafos_cuerpo titulos titulos_capitulo titulos_seccion subtitulos portada indices documento"`
	Section  int   `yaml:"seccion,omitempty" json:"seccion,omitempty" validate:"gte=0"`
	Optional bool  `yaml:"opcional,omitempty" json:"opcional,omitempty"`
}

// Expected holds the target value of a rule. Which fields are required
// depends on the rule's property.
type Expected struct {
	Value     *float64 `yaml:"valor,omitempty" json:"valor,omitempty"`
	Unit      string   `yaml:"unidad,omitempty" json:"unidad,omitempty" validate:"omitempty,oneof=cm pt multiplo"`
	Tolerance float64  `yaml:"tolerancia,omitempty" json:"tolerancia,omitempty" validate:"gte=0"`
	Width     *float64 `yaml:"ancho,omitempty" json:"ancho,omitempty" validate:"omitempty,gt=0"`
	Height    *float64 `yaml:"alto,omitempty" json:"alto,omitempty" validate:"omitempty,gt=0"`
	Label     string   `yaml:"etiqueta,omitempty" json:"etiqueta,omitempty"`
	Family    string   `yaml:"familia,omitempty" json:"familia,omitempty"`
	Size      *float64 `yaml:"tamano,omitempty" json:"tamano,omitempty" validate:"omitempty,gt=0"`
	Sequence  []string `yaml:"secuencia,omitempty" json:"secuencia,omitempty" validate:"omitempty,dive,required"`
	Bold      *bool    `yaml:"negrita,omitempty" json:"negrita,omitempty"`
	Alignment string   `yaml:"alineacion,omitempty" json:"alineacion,omitempty" validate:"omitempty,oneof=izquierda centro derecha justificado"`
}

// Num returns the expected scalar value, 0 when unset.
func (e Expected) Num() float64 {
	return deref(e.Value)
}

// Dimensions returns the expected page width and height.
func (e Expected) Dimensions() (float64, float64) {
	return deref(e.Width), deref(e.Height)
}

// IsBold returns the expected bold setting, false when unset.
func (e Expected) IsBold() bool {
	return e.Bold != nil && *e.Bold
}

// FontSize returns the expected font size in points, 0 when unset.
func (e Expected) FontSize() float64 {
	return deref(e.Size)
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Rule is one formatting requirement.
type Rule struct {
	ID          string         `yaml:"id" json:"id" validate:"required"`
	Type        string         `yaml:"tipo" json:"tipo" validate:"required"`
	Category    string         `yaml:"categoria,omitempty" json:"categoria,omitempty"`
	Property    Property       `yaml:"propiedad" json:"propiedad" validate:"required"`
	Locator     Locator        `yaml:"localizador" json:"localizador"`
	Expected    Expected       `yaml:"esperado" json:"esperado"`
	Severity    types.Severity `yaml:"severidad" json:"severidad" validate:"required,oneof=ERROR ADVERTENCIA SUGERENCIA"`
	AutoCorrect *bool          `yaml:"autocorregir,omitempty" json:"autocorregir,omitempty"`
	Suggestion  string         `yaml:"sugerencia,omitempty" json:"sugerencia,omitempty"`
}

// clone returns a deep copy so callers cannot reach catalog state.
func (r Rule) clone() Rule {
	c := r
	c.Expected.Value = cloneFloat(r.Expected.Value)
	c.Expected.Width = cloneFloat(r.Expected.Width)
	c.Expected.Height = cloneFloat(r.Expected.Height)
	c.Expected.Size = cloneFloat(r.Expected.Size)
	if r.Expected.Sequence != nil {
		c.Expected.Sequence = append([]string(nil), r.Expected.Sequence...)
	}
	if r.Expected.Bold != nil {
		b := *r.Expected.Bold
		c.Expected.Bold = &b
	}
	if r.AutoCorrect != nil {
		v := *r.AutoCorrect
		c.AutoCorrect = &v
	}
	return c
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
