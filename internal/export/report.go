// Package export renders completed assessments as Excel workbooks and PDF
// reports.
package export

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/nashtech/odmat/internal/assessment"
	"github.com/nashtech/odmat/internal/questions"
)

// ErrNoResults is returned for assessments that have not been scored.
var ErrNoResults = errors.New("export: assessment has no results")

const (
	reportTitle  = "NashTech Open Data Maturity Assessment Report"
	notAvailable = "N/A"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Report is the input to every renderer.
type Report struct {
	Bank      *questions.Bank
	Data      assessment.Data
	Generated time.Time
}

// NewReport checks that data carries results.
func NewReport(bank *questions.Bank, data assessment.Data, generated time.Time) (Report, error) {
	if data.Results == nil {
		return Report{}, ErrNoResults
	}
	return Report{Bank: bank, Data: data, Generated: generated}, nil
}

// Filename builds "NashTech-OpenData-Assessment-<Org>-<unix ms>.<ext>"
// using only the organization's ASCII letters and digits.
func Filename(organization, ext string, at time.Time) string {
	org := nonAlnum.ReplaceAllString(organization, "")
	if org == "" {
		org = "Report"
	}
	return fmt.Sprintf("NashTech-OpenData-Assessment-%s-%d.%s", org, at.UnixMilli(), ext)
}

// Filename for this report in the given format.
func (r Report) Filename(f Format) string {
	var org string
	if r.Data.UserDetails != nil {
		org = r.Data.UserDetails.Organization
	}
	return Filename(org, string(f), r.Generated)
}

type participantRow struct{ label, value string }

func (r Report) participant() []participantRow {
	var d assessment.UserDetails
	if r.Data.UserDetails != nil {
		d = *r.Data.UserDetails
	}
	orNA := func(s string) string {
		if s == "" {
			return notAvailable
		}
		return s
	}
	return []participantRow{
		{"Name:", orNA(d.FullName)},
		{"Organization:", orNA(d.Organization)},
		{"Email:", orNA(d.EmailAddress)},
		{"Phone:", orNA(d.PhoneNumber)},
	}
}

func (r Report) overall() []participantRow {
	res := r.Data.Results
	return []participantRow{
		{"Overall Score:", fmt.Sprintf("%d%% (%.1f/5.0)", assessment.Percentage(res.OverallScore), res.OverallScore)},
		{"Maturity Level:", fmt.Sprintf("%s (%s)", res.MaturityLevel, res.MaturityLevel.Description())},
		{"Assessment Duration:", assessment.CompletionTime(r.Data.StartTime, r.Data.EndTime)},
		{"Questions Completed:", fmt.Sprintf("%d/%d", len(r.Data.Answers), r.Bank.Total())},
	}
}

type themeRow struct {
	ThemeID string
	Title   string
	Percent string
	Level   string
	Score   float64
	Count   int
}

func (r Report) themes() []themeRow {
	var out []themeRow
	for _, t := range r.Bank.Themes() {
		s := r.Data.Results.ThemeScores[t.ID]
		out = append(out, themeRow{
			Title:   t.Title,
			Percent: fmt.Sprintf("%d%%", assessment.Percentage(s)),
			Level:   assessment.ThemeLevel(s),
			Score:   s,
			Count:   len(r.Bank.ByTheme(t.ID)),
			ThemeID: t.ID,
		})
	}
	return out
}

func (r Report) generatedAt() string {
	return r.Generated.Format("2006-01-02 15:04:05")
}
