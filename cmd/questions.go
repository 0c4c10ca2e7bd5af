package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nashtech/odmat/internal/questions"
	"github.com/nashtech/odmat/internal/store"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the assessment questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		themeID, _ := cmd.Flags().GetString("theme")
		showOptions, _ := cmd.Flags().GetBool("options")

		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		bank, err := questions.Load(cmd.Context(), e.store.BankRepo())
		if err != nil {
			return fmt.Errorf("load question bank: %w", err)
		}
		if themeID != "" {
			if _, ok := bank.Theme(themeID); !ok {
				return fmt.Errorf("unknown theme %q", themeID)
			}
		}
		printQuestions(cmd.OutOrStdout(), bank, themeID, showOptions)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Store the built-in question bank in the database",
	Long: `Store the built-in question bank in the database.

The bank is written only when the database holds no bank or an older
version. Use --force to overwrite regardless.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		bank := questions.Default()
		written, err := questions.Seed(cmd.Context(), e.store.BankRepo(), bank, questions.Embedded(), force)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !written {
			fmt.Fprintf(out, "Question bank %s is already up to date.\n", bank.Version())
			return nil
		}
		fmt.Fprintf(out, "Stored question bank %s (%d questions, %d themes).\n",
			bank.Version(), bank.Total(), len(bank.Themes()))
		return listBanks(cmd, e.store)
	},
}

func init() {
	questionsCmd.Flags().StringP("theme", "t", "", "Only list questions in this theme (e.g. data-publication)")
	questionsCmd.Flags().Bool("options", false, "Show the answer options of each question")
	seedCmd.Flags().Bool("force", false, "Overwrite the stored bank even if it is newer")
}

func printQuestions(w io.Writer, bank *questions.Bank, themeID string, showOptions bool) {
	for _, t := range bank.Themes() {
		if themeID != "" && t.ID != themeID {
			continue
		}
		qs := bank.ByTheme(t.ID)
		fmt.Fprintf(w, "%s %s (%d questions)\n", t.Icon, t.Title, len(qs))
		fmt.Fprintln(w, strings.Repeat("─", 72))
		for _, q := range qs {
			fmt.Fprintf(w, "%3d. %s\n", q.ID, q.Question)
			if showOptions {
				for _, o := range q.Options {
					fmt.Fprintf(w, "       %s\n", o)
				}
			}
		}
		fmt.Fprintln(w)
	}
}

func listBanks(cmd *cobra.Command, s *store.Store) error {
	banks, err := s.BankRepo().ListBanks(cmd.Context())
	if err != nil {
		return fmt.Errorf("list banks: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%-12s  %s\n", "Version", "Stored")
	for _, b := range banks {
		fmt.Fprintf(out, "%-12s  %s\n", b.Version, b.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}
