package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nashtech/odmat/internal/assessment"
	"github.com/nashtech/odmat/internal/export"
	"github.com/nashtech/odmat/internal/questions"
	"github.com/nashtech/odmat/internal/store"
	"github.com/nashtech/odmat/internal/ui/markdown"
)

// nowFunc stamps exported reports.
var nowFunc = time.Now

var resultsCmd = &cobra.Command{
	Use:   "results [id]",
	Short: "List assessments or show the results of one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		if len(args) == 0 {
			limit, _ := cmd.Flags().GetInt("limit")
			email, _ := cmd.Flags().GetString("email")
			completed, _ := cmd.Flags().GetBool("completed")
			return listAssessments(cmd, e.store, store.ListOpts{
				Limit:         limit,
				Email:         assessment.NormalizeEmail(email),
				CompletedOnly: completed,
			})
		}

		data, bank, err := loadCompleted(cmd, e, args[0])
		if err != nil {
			return err
		}
		width, _ := cmd.Flags().GetInt("width")
		fmt.Fprint(cmd.OutOrStdout(), markdown.Render(resultsMarkdown(bank, data), width, markdown.StyleAuto))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a completed assessment as Excel and/or PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatVal, _ := cmd.Flags().GetString("format")
		outDir, _ := cmd.Flags().GetString("out")

		formats, err := export.ParseFormats(formatVal)
		if err != nil {
			return err
		}

		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		data, bank, err := loadCompleted(cmd, e, args[0])
		if err != nil {
			return err
		}
		report, err := export.NewReport(bank, data, nowFunc())
		if err != nil {
			return err
		}
		if outDir == "" {
			outDir = e.cfg.Export.Dir
		}
		paths, err := export.WriteAll(cmd.Context(), outDir, report, formats, e.log.Named("export"))
		if err != nil {
			return fmt.Errorf("export %s: %w", args[0], err)
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	resultsCmd.Flags().IntP("limit", "n", 20, "Number of assessments to list")
	resultsCmd.Flags().String("email", "", "Only list assessments for this email address")
	resultsCmd.Flags().Bool("completed", false, "Only list completed assessments")
	resultsCmd.Flags().Int("width", 80, "Word wrap width of the results view")

	exportCmd.Flags().StringP("format", "f", "all", "Export format: xlsx, pdf or all")
	exportCmd.Flags().StringP("out", "o", "", "Output directory (default from config export.dir)")
}

// loadCompleted reads a scored assessment and the bank to report it with.
func loadCompleted(cmd *cobra.Command, e *env, id string) (assessment.Data, *questions.Bank, error) {
	ctx := cmd.Context()
	rec, err := e.store.AssessmentRepo().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return assessment.Data{}, nil, fmt.Errorf("assessment %s not found", id)
	}
	if err != nil {
		return assessment.Data{}, nil, fmt.Errorf("get assessment: %w", err)
	}
	data := assessment.FromRecord(rec)
	if !data.Completed || data.Results == nil {
		return data, nil, fmt.Errorf("assessment %s is not completed yet", id)
	}
	bank, err := questions.Load(ctx, e.store.BankRepo())
	if err != nil {
		return data, nil, fmt.Errorf("load question bank: %w", err)
	}
	return data, bank, nil
}

func listAssessments(cmd *cobra.Command, s *store.Store, opts store.ListOpts) error {
	recs, err := s.AssessmentRepo().List(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("list assessments: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, "No assessments found.")
		return nil
	}

	t := newTable([]string{"ID", "Started", "Email", "Organisation", "Answers", "Result"}, 4)
	for _, r := range recs {
		var email, org string
		if r.UserDetails != nil {
			email, org = r.UserDetails.EmailAddress, r.UserDetails.Organization
		}
		result := "in progress"
		if r.Completed && r.Results != nil {
			result = fmt.Sprintf("%d%% %s", assessment.Percentage(r.Results.OverallScore), r.Results.MaturityLevel)
		}
		t.Row(
			r.ID,
			r.StartTime.Local().Format("2006-01-02 15:04"),
			truncate(email, 28),
			truncate(org, 24),
			strconv.Itoa(len(r.Answers)),
			result,
		)
	}
	printTable(out, t)
	return nil
}

// resultsMarkdown renders a completed assessment as a markdown document.
func resultsMarkdown(bank *questions.Bank, d assessment.Data) string {
	r := d.Results
	var b strings.Builder

	b.WriteString("# Open Data Maturity Results\n\n")
	if ud := d.UserDetails; ud != nil {
		fmt.Fprintf(&b, "**%s** · %s · %s\n\n", ud.FullName, ud.Organization, ud.EmailAddress)
	}
	fmt.Fprintf(&b, "## %d%% · %s (%s)\n\n", assessment.Percentage(r.OverallScore), r.MaturityLevel, r.MaturityLevel.Description())
	fmt.Fprintf(&b, "%s\n\n", r.MaturityLevel.Explanation())
	fmt.Fprintf(&b, "Overall score **%.1f / 5.0**, completed in %s, %d of %d questions answered.\n\n",
		r.OverallScore, assessment.CompletionTime(d.StartTime, d.EndTime), len(d.Answers), bank.Total())

	b.WriteString("## Theme scores\n\n")
	b.WriteString("| Theme | Score | Level |\n|---|---:|---|\n")
	for _, ts := range assessment.OrderedThemeScores(bank, *r) {
		fmt.Fprintf(&b, "| %s %s | %.1f | %s |\n", ts.Theme.Icon, ts.Theme.Title, ts.Score, assessment.ThemeLevel(ts.Score))
	}

	b.WriteString("\n## Recommendations\n\n")
	b.WriteString(markdown.NumberedList(r.Recommendations))
	b.WriteString("\n\n> ")
	b.WriteString(assessment.ShareText(*r))
	b.WriteString("\n")
	return b.String()
}
