// Package validation evaluates a structural document against a rule catalog.
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vl4dimr/tesis-system-unap/internal/docx"
	"github.com/vl4dimr/tesis-system-unap/internal/docx/docxtest"
	"github.com/vl4dimr/tesis-system-unap/internal/rules"
	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

func catalog(t *testing.T) *rules.Catalog {
	t.Helper()
	c, err := rules.Default()
	require.NoError(t, err)
	return c
}

func validate(t *testing.T, b *docxtest.Builder) *types.ValidationReport {
	t.Helper()
	doc, err := docx.Load(b.Bytes())
	require.NoError(t, err)
	return Validate(doc.Model(), catalog(t))
}

func byRule(r *types.ValidationReport, id string) []types.Finding {
	var out []types.Finding
	for _, f := range r.Findings {
		if f.RuleID == id {
			out = append(out, f)
		}
	}
	return out
}

func TestValidate_CompliantThesis(t *testing.T) {
	report := validate(t, docxtest.Thesis())

	for _, f := range report.Findings {
		assert.True(t, f.Valid, "%s %s: %s", f.RuleID, f.Element, f.Message)
		assert.Empty(t, f.Suggestion)
	}
	assert.True(t, report.Valid)
	assert.Equal(t, 100.0, report.Percentage)

	// 1 page size + 4 margins + 9 body paragraphs x 3 + 4 chapters + order + 9 sections
	// + 4 chapter titles x 4 + 9 section titles x 4 + font families
	assert.Len(t, report.Findings, 99)
	assert.Len(t, byRule(report, "fuente-cuerpo"), 9)
	assert.Len(t, byRule(report, "titulo-capitulo-negrita"), 4)
	assert.Len(t, byRule(report, "titulo-seccion-alineacion"), 9)

	// no cover, index or subtitles: optional rules stay silent
	for _, id := range []string{"subtitulo-fuente", "portada-alineacion", "indice-fuente"} {
		assert.Empty(t, byRule(report, id), id)
	}
}

func TestValidate_TopMarginTooSmall(t *testing.T) {
	report := validate(t, docxtest.Thesis().Margins(2.0, 2.5, 2.5, 2.5))

	top := byRule(report, "margen-superior")
	require.Len(t, top, 1)
	f := top[0]
	assert.False(t, f.Valid)
	assert.Equal(t, "MARGENES", f.Type)
	assert.Equal(t, "Superior", f.Category)
	assert.Equal(t, "Seccion 1", f.Element)
	assert.Equal(t, "2.0cm", f.Actual)
	assert.Equal(t, "3.5cm", f.Expected)
	assert.Equal(t, types.SeverityError, f.Severity)
	assert.Equal(t, "Margen superior incorrecto: 2.0cm (esperado: 3.5cm)", f.Message)
	assert.Equal(t, "Ajuste el margen superior a 3.5 cm", f.Suggestion)
	assert.Equal(t, types.Locus{Section: 1}, f.Locus)

	assert.False(t, report.Valid)
	assert.Less(t, report.Percentage, 100.0)
	assert.Greater(t, report.Percentage, 0.0)
}

func TestValidate_EmptyDocument(t *testing.T) {
	report := validate(t, docxtest.New().Paragraph("   "))

	require.Len(t, report.Findings, 1)
	f := report.Findings[0]
	assert.Equal(t, types.SeverityError, f.Severity)
	assert.False(t, f.Valid)
	assert.Contains(t, f.Message, "No se encontró contenido")
	assert.Equal(t, 0.0, report.Percentage)
	assert.False(t, report.Valid)
}

func TestValidate_WrongFont(t *testing.T) {
	report := validate(t, docxtest.Thesis().Font("Arial", 11))

	fonts := byRule(report, "fuente-cuerpo")
	require.Len(t, fonts, 9)
	for _, f := range fonts {
		assert.False(t, f.Valid)
		assert.Equal(t, "Arial 11pt", f.Actual)
		assert.Equal(t, "Times New Roman 12pt", f.Expected)
		assert.NotZero(t, f.Locus.Paragraph)
	}
	assert.False(t, report.Valid)
}

func TestValidate_MixedRunsReportFirstMismatch(t *testing.T) {
	b := docxtest.Thesis().Paragraph("Texto", docxtest.WithRuns("Uno ", "dos"), docxtest.WithFont("Times New Roman", 12)).
		Raw(`<w:p><w:r><w:t xml:space="preserve">Normal </w:t></w:r><w:r><w:rPr><w:rFonts w:ascii="Courier New" w:hAnsi="Courier New"/></w:rPr><w:t>mono</w:t></w:r></w:p>`)
	report := validate(t, b)

	fonts := byRule(report, "fuente-cuerpo")
	last := fonts[len(fonts)-1]
	assert.False(t, last.Valid)
	assert.Equal(t, "Courier New 12pt", last.Actual)
	assert.True(t, fonts[len(fonts)-2].Valid)
}

func TestValidate_SpacingAndIndent(t *testing.T) {
	report := validate(t, docxtest.Thesis().
		Paragraph("Párrafo con interlineado sencillo.", docxtest.WithSpacing(1)).
		Paragraph("Párrafo con sangría francesa.", docxtest.WithHanging(1)))

	spacing := byRule(report, "interlineado")
	bad := spacing[len(spacing)-2]
	assert.False(t, bad.Valid)
	assert.Equal(t, "1.0", bad.Actual)
	assert.Equal(t, "2.0", bad.Expected)

	indent := byRule(report, "sangria-primera-linea")
	last := indent[len(indent)-1]
	assert.False(t, last.Valid)
	assert.Equal(t, "-1.0cm", last.Actual)
	assert.Equal(t, "1.25cm", last.Expected)
	assert.True(t, indent[len(indent)-2].Valid)
}

func TestValidate_Chapters(t *testing.T) {
	b := docxtest.New().
		Heading("RESUMEN").Paragraph(docxtest.Lorem).
		Heading("CAPÍTULO I").Paragraph(docxtest.Lorem).
		Heading("CAPÍTULO III").Paragraph(docxtest.Lorem).
		Paragraph("CAPÍTULO II").Paragraph(docxtest.Lorem)
	report := validate(t, b)

	chapters := byRule(report, "capitulos")
	require.Len(t, chapters, 5)

	assert.True(t, chapters[0].Valid)
	assert.Equal(t, "Capitulo I", chapters[0].Element)

	assert.False(t, chapters[1].Valid, "chapter II is plain text")
	assert.Equal(t, "párrafo 7 sin formato de título", chapters[1].Actual)
	assert.Equal(t, 7, chapters[1].Locus.Paragraph)

	assert.True(t, chapters[2].Valid)

	assert.False(t, chapters[3].Valid)
	assert.Equal(t, "ausente", chapters[3].Actual)
	assert.Equal(t, "Falta el CAPÍTULO IV", chapters[3].Message)

	order := chapters[4]
	assert.Equal(t, "Orden de capitulos", order.Element)
	assert.False(t, order.Valid)
	assert.Equal(t, "I, III, II", order.Actual)
	assert.Equal(t, "I, II, III, IV", order.Expected)
}

func TestValidate_ChapterTitleFormat(t *testing.T) {
	b := docxtest.Thesis().
		Paragraph("CAPÍTULO V", docxtest.WithStyle("Heading1"), docxtest.WithFont("Arial", 20), docxtest.WithBold(false), docxtest.WithAlignment("left")).
		Paragraph(docxtest.Lorem)
	report := validate(t, b)

	last := func(id string) types.Finding {
		got := byRule(report, id)
		require.Len(t, got, 5, id)
		return got[4]
	}

	font := last("titulo-capitulo-fuente")
	assert.False(t, font.Valid)
	assert.Equal(t, "TITULOS", font.Type)
	assert.Equal(t, "Arial 20pt", font.Actual)
	assert.Equal(t, "Times New Roman 16pt", font.Expected)
	assert.Equal(t, types.SeverityWarning, font.Severity)

	bold := last("titulo-capitulo-negrita")
	assert.False(t, bold.Valid)
	assert.Equal(t, "sin negrita", bold.Actual)
	assert.Equal(t, "negrita", bold.Expected)

	align := last("titulo-capitulo-alineacion")
	assert.False(t, align.Valid)
	assert.Equal(t, types.AlignLeft, align.Actual)
	assert.Equal(t, types.AlignCenter, align.Expected)

	assert.True(t, last("titulo-capitulo-sangria").Valid)
	assert.True(t, report.Valid, "title formatting is a warning")
}

func TestValidate_TypedIndex(t *testing.T) {
	b := docxtest.New().
		Heading("ÍNDICE").
		Paragraph("CAPÍTULO I INTRODUCCIÓN 5", docxtest.WithIndent(0)).
		Paragraph("CAPÍTULO II MARCO TEÓRICO ........ 9", docxtest.WithIndent(0)).
		Paragraph("RESUMEN iv", docxtest.WithIndent(0))
	for _, n := range []string{"I", "II", "III", "IV"} {
		b.Heading("CAPÍTULO " + n).Paragraph(docxtest.Lorem)
	}
	report := validate(t, b)

	chapters := byRule(report, "capitulos")
	require.Len(t, chapters, 5)
	for _, f := range chapters {
		assert.True(t, f.Valid, "%s: %s", f.Element, f.Message)
	}
	assert.Equal(t, 5, chapters[0].Locus.Paragraph, "the heading, not the index line")
	assert.Equal(t, 7, chapters[1].Locus.Paragraph)
	assert.Equal(t, "I, II, III, IV", chapters[4].Actual)

	entries := byRule(report, "indice-sangria")
	require.Len(t, entries, 3)
	for _, f := range entries {
		assert.True(t, f.Valid)
	}
	assert.Len(t, byRule(report, "fuente-cuerpo"), 4, "index entries are not body text")
}

func TestValidate_ChapterPrefersHeading(t *testing.T) {
	b := docxtest.New().
		Heading("RESUMEN").
		Paragraph("CAPÍTULO I", docxtest.WithIndent(0)).
		Heading("CAPÍTULO I").Paragraph(docxtest.Lorem).
		Heading("CAPÍTULO II").Paragraph(docxtest.Lorem)
	report := validate(t, b)

	chapters := byRule(report, "capitulos")
	require.Len(t, chapters, 5)
	assert.True(t, chapters[0].Valid)
	assert.Equal(t, 3, chapters[0].Locus.Paragraph)
	assert.True(t, chapters[4].Valid, "order uses the chosen occurrences")
}

func TestValidate_Cover(t *testing.T) {
	b := docxtest.New().
		Paragraph("UNIVERSIDAD NACIONAL DEL ALTIPLANO", docxtest.WithIndent(0), docxtest.WithAlignment("center")).
		Paragraph("FACULTAD DE CIENCIAS AGRARIAS").
		Paragraph("Juan Quispe Mamani").
		Heading("RESUMEN").Paragraph(docxtest.Lorem)
	report := validate(t, b)

	align := byRule(report, "portada-alineacion")
	require.Len(t, align, 2)
	assert.True(t, align[0].Valid)
	assert.False(t, align[1].Valid)
	assert.Equal(t, types.AlignJustify, align[1].Actual)
	assert.Equal(t, 2, align[1].Locus.Paragraph)

	indent := byRule(report, "portada-sangria")
	require.Len(t, indent, 2)
	assert.True(t, indent[0].Valid)
	assert.False(t, indent[1].Valid)

	assert.Len(t, byRule(report, "portada-fuente"), 2)
	assert.Len(t, byRule(report, "fuente-cuerpo"), 2, "cover lines are not body text")
	assert.Len(t, byRule(report, "titulo-seccion-fuente"), 1, "cover lines are not section titles")
}

func TestValidate_FontFamilies(t *testing.T) {
	report := validate(t, docxtest.Thesis())
	families := byRule(report, "fuentes-consistencia")
	require.Len(t, families, 1)
	assert.True(t, families[0].Valid)
	assert.Equal(t, "1 fuente", families[0].Actual)

	report = validate(t, docxtest.Thesis().
		Paragraph("Texto en Arial.", docxtest.WithFont("Arial", 12)).
		Paragraph("Texto en Courier.", docxtest.WithFont("Courier New", 12)))
	families = byRule(report, "fuentes-consistencia")
	require.Len(t, families, 1)
	f := families[0]
	assert.False(t, f.Valid)
	assert.Equal(t, "3 fuentes diferentes", f.Actual)
	assert.Equal(t, "máximo 2 fuentes", f.Expected)
	assert.Equal(t, types.SeverityWarning, f.Severity)
	assert.Contains(t, f.Message, "Times New Roman (22)")
	assert.Equal(t, "Documento", f.Element)
}

func TestValidate_MissingSectionsAreWarnings(t *testing.T) {
	b := docxtest.New().Heading("CAPÍTULO I").Heading("INTRODUCCIÓN").Paragraph(docxtest.Lorem).
		Heading("CAPÍTULO II").Heading("MARCO TEÓRICO").Paragraph(docxtest.Lorem).
		Heading("CAPÍTULO III").Heading("METODOLOGÍA").Paragraph(docxtest.Lorem).
		Heading("CAPÍTULO IV").Heading("RESULTADOS Y DISCUSIÓN").Paragraph(docxtest.Lorem).
		Heading("BIBLIOGRAFÍA").Paragraph(docxtest.Lorem)
	report := validate(t, b)

	sections := byRule(report, "secciones-obligatorias")
	require.Len(t, sections, 9)
	missing := map[string]bool{}
	for _, f := range sections {
		assert.Equal(t, types.SeverityWarning, f.Severity)
		if !f.Valid {
			missing[f.Element] = true
		}
	}
	assert.Equal(t, map[string]bool{
		"RESUMEN": true, "ABSTRACT": true, "CONCLUSIONES": true, "RECOMENDACIONES": true,
	}, missing)

	assert.True(t, report.Valid, "warnings do not invalidate the document")
	assert.Less(t, report.Percentage, 100.0)
	assert.Equal(t, 4, report.CountFailing(types.SeverityWarning))
}

func TestValidate_UnmatchedRule(t *testing.T) {
	report := validate(t, docxtest.New().Heading("RESUMEN").Heading("ABSTRACT"))

	for _, id := range []string{"fuente-cuerpo", "interlineado", "sangria-primera-linea"} {
		got := byRule(report, id)
		require.Len(t, got, 1, id)
		assert.False(t, got[0].Valid)
		assert.Equal(t, types.SeverityError, got[0].Severity)
		assert.Equal(t, "0 elementos", got[0].Actual)
	}
}

func TestValidate_SectionLocator(t *testing.T) {
	doc := `
version: x
reglas:
  - {id: tercera, tipo: MARGENES, categoria: Superior, propiedad: pagina.margen_superior, localizador: {ambito: secciones, seccion: 3}, esperado: {valor: 3.5, tolerancia: 0.1}, severidad: ERROR}
  - {id: segunda, tipo: MARGENES, categoria: Superior, propiedad: pagina.margen_superior, localizador: {ambito: secciones, seccion: 2}, esperado: {valor: 3.5, tolerancia: 0.1}, severidad: SUGERENCIA}
`
	cat, err := rules.Parse([]byte(doc), "inline")
	require.NoError(t, err)

	d, err := docx.Load(docxtest.New().Paragraph("uno").SectionBreak().Paragraph("dos").Margins(2, 2.5, 2.5, 2.5).Bytes())
	require.NoError(t, err)
	report := Validate(d.Model(), cat)

	require.Len(t, report.Findings, 2)
	assert.Equal(t, "Seccion 3", report.Findings[0].Element)
	assert.Equal(t, types.SeverityError, report.Findings[0].Severity)
	assert.False(t, report.Findings[0].Valid)

	assert.Equal(t, "Seccion 2", report.Findings[1].Element)
	assert.Equal(t, "2.0cm", report.Findings[1].Actual)
	assert.Equal(t, types.SeveritySuggestion, report.Findings[1].Severity)
}

func TestValidate_Deterministic(t *testing.T) {
	b := docxtest.Thesis().Margins(2.0, 2.0, 3.0, 3.0).Font("Arial", 11).Spacing(1.5)
	first := validate(t, b)
	second := validate(t, b)
	assert.Equal(t, first, second)
}

func TestValidate_PercentageInRange(t *testing.T) {
	builders := []*docxtest.Builder{
		docxtest.New(),
		docxtest.New().Paragraph("solo texto"),
		docxtest.Thesis(),
		docxtest.Thesis().PageSize(21.59, 27.94).Indent(0),
		docxtest.New().Heading("X").Paragraph("y", docxtest.WithFont("Arial", 9)),
	}
	for _, b := range builders {
		r := validate(t, b)
		assert.GreaterOrEqual(t, r.Percentage, 0.0)
		assert.LessOrEqual(t, r.Percentage, 100.0)
		allValid := len(r.Failing()) == 0
		assert.Equal(t, allValid, r.Percentage == 100.0)
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "2.0", formatNumber(2))
	assert.Equal(t, "1.25", formatNumber(1.25))
	assert.Equal(t, "3.5", formatNumber(3.49955))
	assert.Equal(t, "0.0", formatNumber(-0.0001))
	assert.Equal(t, "12pt", formatPt(12))
	assert.Equal(t, "10.5pt", formatPt(10.5))
}
