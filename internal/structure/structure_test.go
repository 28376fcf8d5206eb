// Package structure classifies paragraphs into titles and body text and
// recognizes chapter and section headings.
package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

func para(index int, text string, mods ...func(*types.Paragraph)) types.Paragraph {
	p := types.Paragraph{
		Index:     index,
		Section:   1,
		StyleID:   "Normal",
		StyleName: "Normal",
		Container: types.ContainerBody,
		Runs:      []types.Run{{Text: text}},
	}
	for _, m := range mods {
		m(&p)
	}
	return p
}

func heading(p *types.Paragraph) { p.HeadingLevel = 1 }

func TestNormalize(t *testing.T) {
	assert.Equal(t, "CAPITULO I", Normalize("  Capítulo   I "))
	assert.Equal(t, "REVISION DE LITERATURA", Normalize("Revisión de literatura"))
	assert.Equal(t, "ANO", Normalize("año"))
	assert.Equal(t, "", Normalize("   "))
}

func TestRoman(t *testing.T) {
	for n, s := range map[int]string{1: "I", 4: "IV", 9: "IX", 14: "XIV", 40: "XL", 1994: "MCMXCIV"} {
		assert.Equal(t, s, ToRoman(n))
		assert.Equal(t, n, FromRoman(s))
	}
	assert.Equal(t, "", ToRoman(0))
	assert.Equal(t, 0, FromRoman("IIII"))
	assert.Equal(t, 0, FromRoman("ABC"))
	assert.Equal(t, 0, FromRoman(""))
}

func TestChapterNumeral(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"CAPÍTULO I", "I", true},
		{"Capitulo IV: Resultados", "IV", true},
		{"CAPÍTULO 3", "III", true},
		{"CAPITULO DISCUSION", "", false},
		{"CAPÍTULO IIII", "", false},
		{"Introducción", "", false},
	}
	for _, tt := range tests {
		got, ok := ChapterNumeral(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestIsBody(t *testing.T) {
	tests := []struct {
		name string
		p    types.Paragraph
		want bool
	}{
		{"mixed case text", para(1, "Texto normal del cuerpo."), true},
		{"empty", para(1, "   "), false},
		{"outline heading", para(1, "Introducción", heading), false},
		{"all caps short", para(1, "RESUMEN"), false},
		{"chapter label", para(1, "Capítulo II"), false},
		{"heading style", para(1, "Algo", func(p *types.Paragraph) { p.StyleName = "heading 2" }), false},
		{"table cell", para(1, "Dato", func(p *types.Paragraph) { p.Container = types.ContainerTable }), false},
		{"toc entry", para(1, "Introducción 1", func(p *types.Paragraph) { p.StyleID, p.StyleName = "TOC1", "toc 1" }), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBody(tt.p))
		})
	}
}

func TestChaptersAndTitles(t *testing.T) {
	doc := &types.StructuralDocument{Paragraphs: []types.Paragraph{
		para(1, "CAPÍTULO I", func(p *types.Paragraph) { p.StyleID, p.StyleName = "TOC1", "toc 1" }),
		para(2, "CAPÍTULO I", heading),
		para(3, "Texto del capítulo."),
		para(4, "CAPÍTULO 2"),
		para(5, "Otra sección", func(p *types.Paragraph) { p.Section = 2 }),
	}}

	chapters := Chapters(doc)
	assert.Equal(t, []Chapter{
		{Numeral: "I", Number: 1, Paragraph: 2, Level: 1},
		{Numeral: "II", Number: 2, Paragraph: 4, Level: 0},
	}, chapters)

	assert.Len(t, Titles(doc, 0), 2)
	assert.Len(t, BodyParagraphs(doc, 0), 2)
	assert.Len(t, BodyParagraphs(doc, 2), 1)
}

func TestLayout(t *testing.T) {
	level := func(n int) func(*types.Paragraph) {
		return func(p *types.Paragraph) { p.HeadingLevel = n }
	}
	doc := &types.StructuralDocument{Paragraphs: []types.Paragraph{
		para(1, "UNIVERSIDAD NACIONAL DEL ALTIPLANO"),
		para(2, "Facultad de Ingeniería Agrícola"),
		para(3, "Juan Quispe Mamani"),
		para(4, "PUNO - PERÚ"),
		para(5, "ÍNDICE GENERAL", heading),
		para(6, "   "),
		para(7, "CAPÍTULO I INTRODUCCIÓN 5"),
		para(8, "1.1 Planteamiento del problema ........ 6"),
		para(9, "Resumen xii"),
		para(10, "LISTA DE FIGURAS"),
		para(11, "Figura 1. Mapa de Puno\t14"),
		para(12, "CAPÍTULO I", heading),
		para(13, "1.1 Planteamiento del problema", level(2)),
		para(14, "La tesis se desarrolló en Puno durante 2023."),
		para(15, "CAPÍTULO II", heading),
	}}

	l := Analyze(doc)
	var cover, index []int
	for _, p := range doc.Paragraphs {
		if l.IsCover(p) {
			cover = append(cover, p.Index)
		}
		if l.IsIndexEntry(p) {
			index = append(index, p.Index)
		}
	}
	assert.Equal(t, []int{1, 2, 4}, cover)
	assert.Equal(t, []int{7, 8, 9, 11}, index)

	chapters := Chapters(doc)
	require.Len(t, chapters, 2)
	assert.Equal(t, 12, chapters[0].Paragraph, "index lines are not chapters")

	indexOf := func(ps []types.Paragraph) []int {
		var out []int
		for _, p := range ps {
			out = append(out, p.Index)
		}
		return out
	}
	assert.Equal(t, []int{12, 15}, indexOf(ChapterTitles(doc, 0)))
	assert.Equal(t, []int{5, 10}, indexOf(SectionTitles(doc, 0)))
	assert.Equal(t, []int{13}, indexOf(Subtitles(doc, 0)))
	assert.Equal(t, []int{1, 2, 4}, indexOf(CoverParagraphs(doc, 0)))
	assert.Equal(t, []int{7, 8, 9, 11}, indexOf(IndexEntries(doc, 0)))
	assert.Equal(t, []int{3, 14}, indexOf(BodyParagraphs(doc, 0)))
}

func TestLayout_IndexEndsAtBodyText(t *testing.T) {
	doc := &types.StructuralDocument{Paragraphs: []types.Paragraph{
		para(1, "CONTENIDO", heading),
		para(2, "Introducción 1"),
		para(3, "Este párrafo no termina en número de página."),
		para(4, "Conclusión 9"),
	}}
	assert.Equal(t, []int{2}, func() []int {
		var out []int
		for _, p := range IndexEntries(doc, 0) {
			out = append(out, p.Index)
		}
		return out
	}())
	assert.Len(t, BodyParagraphs(doc, 0), 2)
}

func TestMatchesSection(t *testing.T) {
	assert.True(t, MatchesSection("Introducción", "INTRODUCCION"))
	assert.True(t, MatchesSection("CAPÍTULO I: INTRODUCCIÓN", "INTRODUCCION"))
	assert.True(t, MatchesSection("Bibliografía", "REFERENCIAS BIBLIOGRAFICAS|BIBLIOGRAFIA"))
	assert.False(t, MatchesSection("CAPÍTULO I", "INTRODUCCION"))
	assert.False(t, MatchesSection("Resultados", "RESULTADOS Y DISCUSION"))
}
