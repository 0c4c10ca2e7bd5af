package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nashtech/odmat/internal/questions"
)

// Sheet names of the workbook.
const (
	SheetSummary   = "Summary"
	SheetResponses = "Detailed Responses"
	SheetThemes    = "Theme Analysis"
)

// WriteExcel renders the report as an xlsx workbook with a summary, the
// detailed responses and a per-theme analysis.
func WriteExcel(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetResponses, SheetThemes} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
	}

	st, err := newStyles(f)
	if err != nil {
		return err
	}

	summary := &sheetWriter{f: f, st: st, sheet: SheetSummary}
	responses := &sheetWriter{f: f, st: st, sheet: SheetResponses}
	themes := &sheetWriter{f: f, st: st, sheet: SheetThemes}
	writeSummary(summary, r)
	writeResponses(responses, r)
	writeThemeAnalysis(themes, r)
	if err := errors.Join(summary.err, responses.err, themes.err); err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(sw *sheetWriter, r Report) {
	sw.styled(sw.st.title, reportTitle)
	sw.row("Generated:", r.generatedAt())
	sw.row()

	sw.styled(sw.st.bold, "PARTICIPANT INFORMATION")
	for _, p := range r.participant() {
		sw.row(p.label, p.value)
	}
	sw.row()

	sw.styled(sw.st.bold, "OVERALL RESULTS")
	for _, o := range r.overall() {
		sw.row(o.label, o.value)
	}
	sw.row()

	sw.styled(sw.st.bold, "THEME SCORES")
	sw.styled(sw.st.bold, "Theme", "Score (%)", "Level", "Score (1-5)")
	for _, t := range r.themes() {
		sw.row(t.Title, t.Percent, t.Level, fmt.Sprintf("%.1f", t.Score))
	}
	sw.row()

	sw.styled(sw.st.bold, "RECOMMENDATIONS")
	for i, rec := range r.Data.Results.Recommendations {
		sw.row(fmt.Sprintf("%d.", i+1), rec)
	}
	sw.widths(map[string]float64{"A": 26, "B": 60, "C": 14, "D": 12})
}

func writeResponses(sw *sheetWriter, r Report) {
	sw.styled(sw.st.bold, "Question ID", "Theme", "Question", "Selected Answer", "Score (1-5)")
	for _, a := range r.Data.Answers {
		q, err := r.Bank.Question(a.QuestionID)
		if err != nil {
			continue
		}
		sw.row(q.ID, questions.ThemeLabel(q.Theme), q.Question, a.SelectedOption, a.Score)
	}
	sw.widths(map[string]float64{"A": 12, "B": 22, "C": 70, "D": 70, "E": 12})
}

func writeThemeAnalysis(sw *sheetWriter, r Report) {
	sw.styled(sw.st.title, "Theme Analysis", "", "", "")
	sw.styled(sw.st.bold, "Theme", "Questions Count", "Average Score", "Maturity Level")
	for _, t := range r.themes() {
		sw.row(t.Title, t.Count, fmt.Sprintf("%.2f", t.Score), t.Level)
	}
	sw.widths(map[string]float64{"A": 40, "B": 16, "C": 14, "D": 16})
}

type styles struct {
	bold  int
	title int
}

func newStyles(f *excelize.File) (*styles, error) {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("bold style: %w", err)
	}
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("title style: %w", err)
	}
	return &styles{bold: bold, title: title}, nil
}

// sheetWriter appends rows to one sheet and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	st    *styles
	sheet string
	rows  int
	err   error
}

// row appends values as the next row. No values appends a blank row.
func (sw *sheetWriter) row(values ...any) {
	sw.rows++
	if sw.err != nil || len(values) == 0 {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, sw.rows)
	if err == nil {
		err = sw.f.SetSheetRow(sw.sheet, cell, &values)
	}
	sw.err = err
}

func (sw *sheetWriter) styled(style int, values ...any) {
	sw.row(values...)
	if sw.err != nil {
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, sw.rows)
	last, _ := excelize.CoordinatesToCellName(len(values), sw.rows)
	sw.err = sw.f.SetCellStyle(sw.sheet, first, last, style)
}

func (sw *sheetWriter) widths(cols map[string]float64) {
	for col, w := range cols {
		if sw.err != nil {
			return
		}
		sw.err = sw.f.SetColWidth(sw.sheet, col, col, w)
	}
}
