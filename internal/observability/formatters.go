// Package observability provides formatted output for the command-line tools.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/vl4dimr/tesis-system-unap/internal/report"
	"github.com/vl4dimr/tesis-system-unap/internal/rules"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 80
	// maxItemsToShow is the default number of failing findings listed per severity
	maxItemsToShow = 10
)

// severityOrder lists severities most serious first.
var severityOrder = []string{"ERROR", "ADVERTENCIA", "SUGERENCIA"}

// Printer handles human-readable output
type Printer struct {
	out     io.Writer
	verbose bool
}

// NewPrinter creates a new Printer that writes to the given writer. In
// verbose mode every failing finding is listed.
func NewPrinter(out io.Writer, verbose bool) *Printer {
	return &Printer{out: out, verbose: verbose}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens a line to the box width, counting runes.
func truncate(line string) string {
	r := []rune(line)
	if len(r) <= boxWidth-4 {
		return line
	}
	return string(r[:boxWidth-7]) + "..."
}

// PrintValidation outputs the summary and failing findings of a report.
func (p *Printer) PrintValidation(res report.ValidacionResultado) {
	var sb strings.Builder

	status := "CUMPLE"
	if !res.EsValido {
		status = "NO CUMPLE"
	}
	sb.WriteString(fmt.Sprintf("Estado:        %s\n", status))
	sb.WriteString(fmt.Sprintf("Cumplimiento:  %.2f%%\n", res.PorcentajeCumplimiento))
	sb.WriteString(fmt.Sprintf("Validaciones:  %d\n", res.TotalValidaciones))
	sb.WriteString(fmt.Sprintf("Errores: %d  Advertencias: %d  Sugerencias: %d\n", res.Errores, res.Advertencias, res.Sugerencias))

	bySeverity := make(map[string][]report.ValidacionItem)
	for _, item := range res.Items {
		if !item.EsValido {
			bySeverity[item.Severidad] = append(bySeverity[item.Severidad], item)
		}
	}
	for _, sev := range severityOrder {
		items := bySeverity[sev]
		if len(items) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s:\n", sev))
		count := len(items)
		if !p.verbose {
			count = min(count, maxItemsToShow)
		}
		for _, item := range items[:count] {
			sb.WriteString(fmt.Sprintf("  • %s: %s (esperado %s)\n", item.Elemento, item.ValorActual, item.ValorEsperado))
			if item.Sugerencia != nil {
				sb.WriteString(fmt.Sprintf("    → %s\n", *item.Sugerencia))
			}
		}
		if len(items) > count {
			sb.WriteString(fmt.Sprintf("  ... y %d más\n", len(items)-count))
		}
	}

	title := "VALIDACIÓN"
	if res.Archivo != "" {
		title += " · " + res.Archivo
	}
	p.printBox(title, sb.String())
}

// PrintChanges outputs the change log of a formatting run.
func (p *Printer) PrintChanges(file string, res report.FormateoResultado) {
	var sb strings.Builder

	sb.WriteString(res.Mensaje + "\n")
	sb.WriteString(fmt.Sprintf("Cumplimiento final: %.2f%%\n", res.PorcentajeCumplimiento))
	if len(res.CambiosRealizados) > 0 {
		sb.WriteString("\nCambios realizados:\n")
		for _, c := range res.CambiosRealizados {
			sb.WriteString(fmt.Sprintf("  • %s\n", c))
		}
	}

	p.printBox("FORMATEO · "+file, sb.String())
}

// PrintError outputs a failed request the way the service would report it.
func (p *Printer) PrintError(file string, detail report.ErrorDetail) {
	var sb strings.Builder

	sb.WriteString(detail.Detail + "\n")
	if len(detail.Items) > 0 {
		sb.WriteString("\nPendientes:\n")
		for _, item := range detail.Items {
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", item.Elemento, item.Mensaje))
		}
	}
	if len(detail.CambiosRealizados) > 0 {
		sb.WriteString("\nCambios descartados:\n")
		for _, c := range detail.CambiosRealizados {
			sb.WriteString(fmt.Sprintf("  • %s\n", c))
		}
	}

	p.printBox("ERROR · "+file, sb.String())
}

// PrintCatalog outputs the rules of a catalog, one per line.
func (p *Printer) PrintCatalog(cat *rules.Catalog) {
	var sb strings.Builder

	for _, r := range cat.Rules() {
		auto := ""
		if cat.AutoCorrects(r) {
			auto = " [auto]"
		}
		sb.WriteString(fmt.Sprintf("%-26s %-11s %s%s\n", r.ID, r.Severity, r.Property, auto))
	}

	title := fmt.Sprintf("REGLAS · versión %s (%d)", cat.Version(), cat.Len())
	if cat.Name() != "" {
		title = fmt.Sprintf("%s · versión %s (%d)", cat.Name(), cat.Version(), cat.Len())
	}
	p.printBox(title, sb.String())
}
