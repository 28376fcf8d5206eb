package report

import "github.com/vl4dimr/tesis-system-unap/internal/rules"

// Configuracion summarizes the format a catalog expects.
type Configuracion struct {
	Version  string        `json:"version"`
	Nombre   string        `json:"nombre,omitempty"`
	Pagina   ConfigPagina  `json:"pagina"`
	Margenes ConfigMargen  `json:"margenes"`
	Fuente   ConfigFuente  `json:"fuente"`
	Parrafo  ConfigParrafo `json:"parrafo"`
}

// ConfigPagina is the expected page size.
type ConfigPagina struct {
	AnchoCm float64 `json:"ancho_cm"`
	AltoCm  float64 `json:"alto_cm"`
}

// ConfigMargen holds the expected margins.
type ConfigMargen struct {
	SuperiorCm  float64 `json:"superior_cm"`
	InferiorCm  float64 `json:"inferior_cm"`
	IzquierdoCm float64 `json:"izquierdo_cm"`
	DerechoCm   float64 `json:"derecho_cm"`
}

// ConfigFuente is the expected body font.
type ConfigFuente struct {
	Nombre   string  `json:"nombre"`
	TamanoPt float64 `json:"tamano_pt"`
}

// ConfigParrafo holds the expected paragraph layout.
type ConfigParrafo struct {
	Interlineado          float64 `json:"interlineado"`
	SangriaPrimeraLineaCm float64 `json:"sangria_primera_linea_cm"`
}

// FromCatalog reads the first rule over each property. Properties the
// catalog does not constrain stay zero.
func FromCatalog(cat *rules.Catalog) Configuracion {
	out := Configuracion{Version: cat.Version(), Nombre: cat.Name()}
	seen := make(map[rules.Property]bool)
	for _, r := range cat.Rules() {
		if seen[r.Property] {
			continue
		}
		seen[r.Property] = true

		e := r.Expected
		switch r.Property {
		case rules.PropPageSize:
			out.Pagina.AnchoCm, out.Pagina.AltoCm = e.Dimensions()
		case rules.PropMarginTop:
			out.Margenes.SuperiorCm = e.Num()
		case rules.PropMarginBottom:
			out.Margenes.InferiorCm = e.Num()
		case rules.PropMarginLeft:
			out.Margenes.IzquierdoCm = e.Num()
		case rules.PropMarginRight:
			out.Margenes.DerechoCm = e.Num()
		case rules.PropFont:
			out.Fuente = ConfigFuente{Nombre: e.Family, TamanoPt: e.FontSize()}
		case rules.PropLineSpacing:
			out.Parrafo.Interlineado = e.Num()
		case rules.PropFirstLineIndent:
			out.Parrafo.SangriaPrimeraLineaCm = e.Num()
		}
	}
	return out
}
