package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nashtech/odmat/internal/app"
	"github.com/nashtech/odmat/internal/assessment"
	"github.com/nashtech/odmat/internal/export"
	"github.com/nashtech/odmat/internal/llm"
	"github.com/nashtech/odmat/internal/questions"
	"github.com/nashtech/odmat/internal/recommend"
	"github.com/nashtech/odmat/internal/screen"
	"github.com/nashtech/odmat/internal/screens/assess"
	"github.com/nashtech/odmat/internal/screens/splash"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Take the assessment in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAssess(cmd)
	},
}

func init() {
	assessCmd.Flags().String("resume", "", "Resume the in-progress assessment with this ID")
}

// runAssess opens the store, builds the session and launches the TUI.
func runAssess(cmd *cobra.Command) error {
	ctx := cmd.Context()
	e, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	bank, err := questions.Load(ctx, e.store.BankRepo())
	if err != nil {
		return fmt.Errorf("load question bank: %w", err)
	}

	opts := []assessment.Option{
		assessment.WithEvents(e.store.EventRepo()),
		assessment.WithLogger(e.log.Named("assessment")),
	}
	if rec := newRecommender(ctx, e, bank); rec != nil {
		opts = append(opts, assessment.WithRecommender(rec))
	}
	sess := assessment.NewSession(bank, e.store.AssessmentRepo(), opts...)

	// cmd may be the root command, which has no --resume flag.
	if f := cmd.Flags().Lookup("resume"); f != nil && f.Value.String() != "" {
		if err := sess.Restore(ctx, f.Value.String()); err != nil {
			return fmt.Errorf("resume %s: %w", f.Value.String(), err)
		}
	}

	formats, err := export.ParseFormats(strings.Join(e.cfg.Export.Formats, ","))
	if err != nil {
		return fmt.Errorf("export formats: %w", err)
	}
	deps := assess.Deps{
		Session:   sess,
		ExportDir: e.cfg.Export.Dir,
		Formats:   formats,
		Logger:    e.log.Named("tui"),
	}

	e.log.Info("starting terminal UI", zap.String("db", e.dbPath), zap.String("bank", bank.Version()))
	return app.Run(ctx, splash.New(func() screen.Screen { return assess.New(deps) }))
}

// newRecommender wires the configured LLM provider into a recommendation
// generator. It returns nil when no provider is usable so sessions fall
// back to the canned recommendations.
func newRecommender(ctx context.Context, e *env, bank *questions.Bank) assessment.Recommender {
	cfg := e.cfg.LLM
	if err := cfg.Validate(); err != nil {
		if !llm.Discover(&cfg) {
			e.log.Warn("LLM provider not configured, recommendations will use defaults", zap.Error(err))
			return nil
		}
	}

	provider, err := llm.NewProvider(ctx, cfg, e.store.EventRepo(), e.log)
	if err != nil {
		e.log.Warn("LLM provider unavailable, recommendations will use defaults", zap.Error(err))
		return nil
	}
	if provider == nil {
		return nil
	}
	e.log.Info("LLM provider ready", zap.String("provider", cfg.Provider), zap.String("model", provider.ModelID()))
	return recommend.New(provider, bank, recommend.WithLogger(e.log.Named("recommend")))
}
