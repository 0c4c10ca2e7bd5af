package cmd

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nashtech/odmat/internal/auth"
	"github.com/nashtech/odmat/internal/config"
	"github.com/nashtech/odmat/internal/questions"
	"github.com/nashtech/odmat/internal/server"
	"github.com/nashtech/odmat/internal/survey"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assessment and survey builder HTTP API",
	Long: `Serve the HTTP API until interrupted.

The server restarts with the new settings whenever the config file changes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	for {
		restart, err := serveOnce(ctx, cmd)
		if err != nil || !restart {
			return err
		}
	}
}

// serveOnce runs the server until ctx ends or the config file changes. It
// reports whether the server should start again with a fresh config.
func serveOnce(ctx context.Context, cmd *cobra.Command) (bool, error) {
	e, err := setup(cmd, false)
	if err != nil {
		return false, err
	}
	defer e.Close()

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		e.cfg.Server.Addr = addr
	}

	bank, err := questions.Load(ctx, e.store.BankRepo())
	if err != nil {
		return false, fmt.Errorf("load question bank: %w", err)
	}

	secret := []byte(e.cfg.Server.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return false, fmt.Errorf("generate signing secret: %w", err)
		}
		e.log.Warn("server.jwt_secret not set, tokens will not survive a restart")
	}
	authSvc, err := auth.NewService(e.store.UserRepo(), secret,
		auth.WithTTL(e.cfg.Server.TokenTTL),
		auth.WithLogger(e.log.Named("auth")))
	if err != nil {
		return false, err
	}

	srv := server.New(server.Deps{
		Bank:        bank,
		Assessments: e.store.AssessmentRepo(),
		Events:      e.store.EventRepo(),
		Recommender: newRecommender(ctx, e, bank),
		Auth:        authSvc,
		Surveys:     survey.NewService(e.store.SurveyRepo(), e.log.Named("survey")),
		Logger:      e.log.Named("http"),
	}, server.Options{
		Addr:            e.cfg.Server.Addr,
		ShutdownTimeout: e.cfg.Server.ShutdownTimeout,
		Metrics:         e.cfg.Server.Metrics,
	})

	runCtx, stop, err := config.Watch(ctx, e.cfgPath)
	if err != nil {
		e.log.Info("config file not watched", zap.String("path", e.cfgPath), zap.Error(err))
		runCtx, stop = context.WithCancel(ctx)
	}
	defer stop()

	if err := srv.Run(runCtx); err != nil {
		return false, err
	}
	if ctx.Err() != nil {
		return false, nil
	}
	var changed *config.ErrChanged
	if errors.As(context.Cause(runCtx), &changed) {
		e.log.Info("config changed, restarting", zap.String("path", changed.Path), zap.Stringer("op", changed.Op))
		return true, nil
	}
	return false, nil
}
