package formatting

import (
	"github.com/vl4dimr/tesis-system-unap/internal/docx"
	"github.com/vl4dimr/tesis-system-unap/internal/rules"
	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

// corrector rewrites one target and reports whether anything changed.
type corrector func(doc *docx.Document, r rules.Rule, target types.Locus) (bool, error)

var correctors = map[rules.Property]corrector{
	rules.PropPageSize:        correctPageSize,
	rules.PropMarginTop:       correctMargin,
	rules.PropMarginBottom:    correctMargin,
	rules.PropMarginLeft:      correctMargin,
	rules.PropMarginRight:     correctMargin,
	rules.PropFont:            correctFont,
	rules.PropLineSpacing:     correctLineSpacing,
	rules.PropFirstLineIndent: correctFirstLineIndent,
	rules.PropBold:            correctBold,
	rules.PropAlignment:       correctAlignment,
	rules.PropChapters:        correctChapter,
}

var marginSides = map[rules.Property]docx.Side{
	rules.PropMarginTop:    docx.MarginTop,
	rules.PropMarginBottom: docx.MarginBottom,
	rules.PropMarginLeft:   docx.MarginLeft,
	rules.PropMarginRight:  docx.MarginRight,
}

// Apply runs the corrector of an action over its targets and returns the
// number of targets that changed.
func Apply(doc *docx.Document, action Action) (int, error) {
	correct, ok := correctors[action.Rule.Property]
	if !ok {
		return 0, nil
	}

	changed := 0
	for _, target := range action.Targets {
		if target.Section == 0 && target.Paragraph == 0 {
			// Nothing to point a correction at, e.g. a missing chapter.
			continue
		}
		ok, err := correct(doc, action.Rule, target)
		if err != nil {
			return changed, &ApplyError{RuleID: action.Rule.ID, Cause: err}
		}
		if ok {
			changed++
		}
	}
	return changed, nil
}

func correctPageSize(doc *docx.Document, r rules.Rule, target types.Locus) (bool, error) {
	w, h := r.Expected.Dimensions()
	return doc.SetPageSize(target.Section, w, h)
}

func correctMargin(doc *docx.Document, r rules.Rule, target types.Locus) (bool, error) {
	return doc.SetMargin(target.Section, marginSides[r.Property], r.Expected.Num())
}

func correctFont(doc *docx.Document, r rules.Rule, target types.Locus) (bool, error) {
	return doc.SetRunFont(target.Paragraph, r.Expected.Family, r.Expected.FontSize())
}

func correctLineSpacing(doc *docx.Document, r rules.Rule, target types.Locus) (bool, error) {
	return doc.SetLineSpacing(target.Paragraph, r.Expected.Num())
}

func correctFirstLineIndent(doc *docx.Document, r rules.Rule, target types.Locus) (bool, error) {
	return doc.SetFirstLineIndent(target.Paragraph, r.Expected.Num())
}

func correctBold(doc *docx.Document, r rules.Rule, target types.Locus) (bool, error) {
	return doc.SetRunBold(target.Paragraph, r.Expected.IsBold())
}

func correctAlignment(doc *docx.Document, r rules.Rule, target types.Locus) (bool, error) {
	return doc.SetAlignment(target.Paragraph, r.Expected.Alignment)
}

func correctChapter(doc *docx.Document, _ rules.Rule, target types.Locus) (bool, error) {
	if target.Paragraph == 0 {
		return false, nil
	}
	return doc.SetHeadingLevel(target.Paragraph, 1)
}

