package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"

	"github.com/nashtech/odmat/internal/assessment"
	"github.com/nashtech/odmat/internal/questions"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

var generated = time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)

func testReport(t *testing.T) Report {
	t.Helper()
	bank := questions.Default()
	var answers assessment.Answers
	for _, q := range bank.ByTheme("data-literacy") {
		answers.Save(q.ID, q.Options[3])
	}
	res := assessment.Score(bank, answers)
	res.Recommendations = []string{"Build a data skills programme.", "Publish an open data policy."}

	start := generated.Add(-5 * time.Minute)
	end := generated
	data := assessment.Data{
		ID: "a1",
		UserDetails: &assessment.UserDetails{
			FullName:     "Ada Lovelace",
			EmailAddress: "ada@example.org",
			Organization: "Analytical Engines, Ltd.",
		},
		Answers:   answers,
		Completed: true,
		StartTime: start,
		EndTime:   &end,
		Results:   &res,
	}
	r, err := NewReport(bank, data, generated)
	require.NoError(t, err)
	return r
}

func TestNewReport_RequiresResults(t *testing.T) {
	_, err := NewReport(questions.Default(), assessment.Data{}, generated)
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestFilename(t *testing.T) {
	at := time.UnixMilli(1717000000123)
	assert.Equal(t, "NashTech-OpenData-Assessment-AnalyticalEnginesLtd-1717000000123.xlsx", Filename("Analytical Engines, Ltd.", "xlsx", at))
	assert.Equal(t, "NashTech-OpenData-Assessment-Report-1717000000123.pdf", Filename("", "pdf", at))
	assert.Equal(t, "NashTech-OpenData-Assessment-Report-1717000000123.pdf", Filename("—", "pdf", at))
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats("all")
	require.NoError(t, err)
	assert.Equal(t, Formats, got)

	got, err = ParseFormats("PDF, excel")
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatPDF, FormatExcel}, got)

	_, err = ParseFormats("docx")
	assert.Error(t, err)
}

func TestWriteExcel_Layout(t *testing.T) {
	r := testReport(t)
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetResponses, SheetThemes}, f.GetSheetList())

	cell := func(sheet, ref string) string {
		t.Helper()
		v, err := f.GetCellValue(sheet, ref)
		require.NoError(t, err)
		return v
	}

	summary := map[string]string{
		"A1":  reportTitle,
		"B2":  "2025-06-02 14:30:00",
		"A4":  "PARTICIPANT INFORMATION",
		"B5":  "Ada Lovelace",
		"B6":  "Analytical Engines, Ltd.",
		"B8":  "N/A",
		"A10": "OVERALL RESULTS",
		"B11": "32% (1.6/5.0)",
		"B12": "Developing (Repeatable Level)",
		"B13": "5 min",
		"B14": "6/47",
		"A17": "Theme",
		"D17": "Score (1-5)",
		"A18": "Data Publication Process",
		"B19": "80%",
		"C19": "Managed",
		"D19": "4.0",
		"A24": "RECOMMENDATIONS",
		"A25": "1.",
		"B26": "Publish an open data policy.",
	}
	got := map[string]string{}
	for ref := range summary {
		got[ref] = cell(SheetSummary, ref)
	}
	if diff := cmp.Diff(summary, got); diff != "" {
		t.Errorf("summary sheet mismatch (-want +got):\n%s", diff)
	}

	rows, err := f.GetRows(SheetResponses)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, []string{"Question ID", "Theme", "Question", "Selected Answer", "Score (1-5)"}, rows[0])
	assert.Equal(t, "DATA LITERACY", rows[1][1])
	assert.Equal(t, "4", rows[1][4])

	assert.Equal(t, "Theme Analysis", cell(SheetThemes, "A1"))
	assert.Equal(t, "Questions Count", cell(SheetThemes, "B2"))
	assert.Equal(t, "17", cell(SheetThemes, "B3"))
	assert.Equal(t, "4.00", cell(SheetThemes, "C4"))
	assert.Equal(t, "Initial", cell(SheetThemes, "D7"))
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, testReport(t)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	r := testReport(t)

	paths, err := WriteAll(context.Background(), filepath.Join(dir, "out"), r, Formats, nil)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, r.Filename(FormatExcel), filepath.Base(paths[0]))
	assert.Equal(t, r.Filename(FormatPDF), filepath.Base(paths[1]))
	for _, p := range paths {
		st, err := os.Stat(p)
		require.NoError(t, err)
		assert.NotZero(t, st.Size())
	}
}
