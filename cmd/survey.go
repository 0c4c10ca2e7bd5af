package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nashtech/odmat/internal/app"
	"github.com/nashtech/odmat/internal/screens/preview"
	"github.com/nashtech/odmat/internal/store"
	"github.com/nashtech/odmat/internal/survey"
)

var surveyCmd = &cobra.Command{
	Use:   "survey",
	Short: "Inspect surveys built through the API",
}

var surveyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the surveys owned by an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")

		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		user, err := e.store.UserRepo().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(owner)))
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no account for %q", owner)
		}
		if err != nil {
			return fmt.Errorf("get account: %w", err)
		}

		list, err := survey.NewService(e.store.SurveyRepo(), e.log).List(ctx, user.ID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "No surveys found.")
			return nil
		}
		t := newTable([]string{"ID", "Status", "Elements", "Updated", "Title"}, 0, 2)
		for _, s := range list {
			var n int
			if s.Schema != nil {
				n = len(s.Schema.Elements())
			}
			t.Row(
				strconv.FormatInt(s.ID, 10),
				string(s.Status),
				strconv.Itoa(n),
				s.UpdatedAt.Local().Format("2006-01-02 15:04"),
				truncate(s.Title, 40),
			)
		}
		printTable(out, t)
		return nil
	},
}

var surveyPreviewCmd = &cobra.Command{
	Use:   "preview <id>",
	Short: "Step through a survey as a respondent would",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		rec, err := e.store.SurveyRepo().Get(cmd.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("survey %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("get survey: %w", err)
		}

		var schema survey.Schema
		if len(rec.SchemaJSON) > 0 {
			if schema, err = survey.ParseSchema(rec.SchemaJSON); err != nil {
				return fmt.Errorf("survey %d: %w", id, err)
			}
		}
		if len(schema.Elements()) == 0 {
			return fmt.Errorf("survey %d has no elements to preview", id)
		}
		return app.Run(cmd.Context(), preview.New(rec.Title, schema))
	},
}

func init() {
	surveyListCmd.Flags().String("owner", "", "Email of the owning account (required)")
	_ = surveyListCmd.MarkFlagRequired("owner")

	surveyCmd.AddCommand(surveyListCmd)
	surveyCmd.AddCommand(surveyPreviewCmd)
}
