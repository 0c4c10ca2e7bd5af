package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin    = 15.0
	pdfLine      = 6.0
	pdfLabelW    = 50.0
	pdfPageWidth = 210.0
)

// WritePDF renders the summary, theme table and recommendations as an A4
// PDF.
func WritePDF(w io.Writer, r Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(reportTitle, true)
	pdf.SetCreator("odmat", true)
	pdf.AddPage()

	// Core fonts are cp1252; translate UTF-8 input.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	width := pdfPageWidth - 2*pdfMargin

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(width, 8, tr(reportTitle), "", "L", false)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(width, pdfLine, tr("Generated: "+r.generatedAt()), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetFillColor(230, 236, 245)
		pdf.CellFormat(width, 8, tr(title), "", 1, "L", true, 0, "")
		pdf.Ln(1)
	}
	pairs := func(rows []participantRow) {
		for _, p := range rows {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(pdfLabelW, pdfLine, tr(p.label), "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(width-pdfLabelW, pdfLine, tr(p.value), "", "L", false)
		}
		pdf.Ln(3)
	}

	section("PARTICIPANT INFORMATION")
	pairs(r.participant())

	section("OVERALL RESULTS")
	pairs(r.overall())
	if expl := r.Data.Results.MaturityLevel.Explanation(); expl != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(width, pdfLine, tr(expl), "", "L", false)
		pdf.Ln(3)
	}

	section("THEME SCORES")
	cols := []struct {
		title string
		w     float64
		align string
	}{
		{"Theme", 85, "L"},
		{"Score (%)", 30, "C"},
		{"Level", 35, "C"},
		{"Score (1-5)", 30, "C"},
	}
	pdf.SetFont("Helvetica", "B", 10)
	for _, c := range cols {
		pdf.CellFormat(c.w, 7, tr(c.title), "1", 0, c.align, false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, t := range r.themes() {
		vals := []string{t.Title, t.Percent, t.Level, fmt.Sprintf("%.1f", t.Score)}
		for i, c := range cols {
			pdf.CellFormat(c.w, 7, tr(vals[i]), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	section("RECOMMENDATIONS")
	pdf.SetFont("Helvetica", "", 10)
	for i, rec := range r.Data.Results.Recommendations {
		pdf.CellFormat(8, pdfLine, fmt.Sprintf("%d.", i+1), "", 0, "L", false, 0, "")
		pdf.MultiCell(width-8, pdfLine, tr(rec), "", "L", false)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
