package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vl4dimr/tesis-system-unap/internal/report"
	"github.com/vl4dimr/tesis-system-unap/internal/rules"
)

func failing(element, severity string) report.ValidacionItem {
	return report.ValidacionItem{
		Elemento:      element,
		ValorActual:   "Arial 11pt",
		ValorEsperado: "Times New Roman 12pt",
		Mensaje:       "Fuente incorrecta",
		Severidad:     severity,
	}
}

func TestPrintValidation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	hint := "Use Times New Roman"
	item := failing("Fuente del cuerpo", "ERROR")
	item.Sugerencia = &hint

	p.PrintValidation(report.ValidacionResultado{
		Archivo:                "tesis.docx",
		PorcentajeCumplimiento: 87.5,
		TotalValidaciones:      8,
		Errores:                1,
		Advertencias:           1,
		Items: []report.ValidacionItem{
			{Elemento: "Margen superior", EsValido: true, Severidad: "ERROR"},
			failing("Sección RESUMEN", "ADVERTENCIA"),
			item,
		},
	})
	output := buf.String()

	assert.Contains(t, output, "VALIDACIÓN · tesis.docx")
	assert.Contains(t, output, "NO CUMPLE")
	assert.Contains(t, output, "87.50%")
	assert.Contains(t, output, "Fuente del cuerpo")
	assert.Contains(t, output, "→ Use Times New Roman")
	assert.NotContains(t, output, "Margen superior")

	// errors are listed before warnings
	assert.Less(t, strings.Index(output, "ERROR:"), strings.Index(output, "ADVERTENCIA:"))
}

func TestPrintValidation_Truncated(t *testing.T) {
	items := make([]report.ValidacionItem, maxItemsToShow+3)
	for i := range items {
		items[i] = failing("Párrafo", "ERROR")
	}
	res := report.ValidacionResultado{Items: items, Errores: len(items)}

	var short bytes.Buffer
	NewPrinter(&short, false).PrintValidation(res)
	assert.Contains(t, short.String(), "... y 3 más")

	var full bytes.Buffer
	NewPrinter(&full, true).PrintValidation(res)
	assert.NotContains(t, full.String(), "... y")
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	p.printBox("T", strings.Repeat("á", boxWidth*2))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), line)
	}
}

func TestPrintChangesAndError(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	p.PrintChanges("tesis.docx", report.FormateoResultado{
		Exito:                  true,
		Mensaje:                "Documento formateado exitosamente",
		CambiosRealizados:      []string{"Margen superior ajustado a 3.5 cm"},
		PorcentajeCumplimiento: 100,
	})
	p.PrintError("otra.docx", report.ErrorDetail{
		Detail:            "El formateo no pudo corregir 1 errores; el documento no fue modificado",
		Items:             []report.ValidacionItem{failing("Capitulo IV", "ERROR")},
		CambiosRealizados: []string{"Fuente ajustada a Times New Roman 12pt en 3 párrafos"},
	})
	output := buf.String()

	assert.Contains(t, output, "FORMATEO · tesis.docx")
	assert.Contains(t, output, "Margen superior ajustado a 3.5 cm")
	assert.Contains(t, output, "100.00%")
	assert.Contains(t, output, "ERROR · otra.docx")
	assert.Contains(t, output, "Capitulo IV")
	assert.Contains(t, output, "Cambios descartados")
}

func TestPrintCatalog(t *testing.T) {
	cat, err := rules.Default()
	require.NoError(t, err)

	var buf bytes.Buffer
	NewPrinter(&buf, false).PrintCatalog(cat)
	output := buf.String()

	assert.Contains(t, output, cat.Version())
	for _, r := range cat.Rules() {
		assert.Contains(t, output, r.ID)
	}
}
