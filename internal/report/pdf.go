package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfFont     = "Helvetica"
	pdfLineH    = 5.0
	pdfColWidth = 45.0
)

// WritePDF renders validation results as a compliance report, one page per
// result.
func WritePDF(w io.Writer, results ...ValidacionResultado) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	// core fonts are cp1252; accented Spanish text needs translating
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, r := range results {
		pdf.AddPage()
		writeSummary(pdf, tr, r)
		writeFindings(pdf, tr, r.Items)
	}
	if len(results) == 0 {
		pdf.AddPage()
		pdf.SetFont(pdfFont, "", 11)
		pdf.CellFormat(0, 8, tr("Sin resultados"), "", 1, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render pdf report: %w", err)
	}
	return pdf.Output(w)
}

func writeSummary(pdf *gofpdf.Fpdf, tr func(string) string, r ValidacionResultado) {
	title := "Reporte de validación"
	if r.Archivo != "" {
		title += ": " + r.Archivo
	}
	pdf.SetFont(pdfFont, "B", 14)
	pdf.MultiCell(0, 8, tr(title), "", "L", false)

	status := "CUMPLE"
	if !r.EsValido {
		status = "NO CUMPLE"
	}
	pdf.SetFont(pdfFont, "", 11)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Estado: %s  |  Cumplimiento: %.2f%%", status, r.PorcentajeCumplimiento)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Validaciones: %d  |  Errores: %d  |  Advertencias: %d  |  Sugerencias: %d",
		r.TotalValidaciones, r.Errores, r.Advertencias, r.Sugerencias)), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func writeFindings(pdf *gofpdf.Fpdf, tr func(string) string, items []ValidacionItem) {
	var failing []ValidacionItem
	for _, it := range items {
		if !it.EsValido {
			failing = append(failing, it)
		}
	}
	if len(failing) == 0 {
		pdf.SetFont(pdfFont, "", 11)
		pdf.CellFormat(0, 7, tr("Todas las validaciones se cumplen."), "", 1, "L", false, 0, "")
		return
	}

	pdf.SetFont(pdfFont, "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, h := range []string{"Severidad", "Elemento", "Actual", "Esperado"} {
		pdf.CellFormat(pdfColWidth-2.5, 7, tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(pdfFont, "", 9)
	for _, it := range failing {
		element := it.Elemento
		if it.Categoria != "" && it.Categoria != it.Elemento {
			element = it.Categoria + " / " + it.Elemento
		}
		for _, cell := range []string{it.Severidad, element, it.ValorActual, it.ValorEsperado} {
			pdf.CellFormat(pdfColWidth-2.5, 6, tr(truncate(cell, 28)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		if it.Sugerencia != nil {
			pdf.SetFont(pdfFont, "I", 8)
			pdf.MultiCell(0, pdfLineH, tr("Sugerencia: "+*it.Sugerencia), "", "L", false)
			pdf.SetFont(pdfFont, "", 9)
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
