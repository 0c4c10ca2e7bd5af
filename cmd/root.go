package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nashtech/odmat/internal/config"
	"github.com/nashtech/odmat/internal/logging"
	"github.com/nashtech/odmat/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "odmat",
	Short: "Open Data Maturity assessment",
	Long: `odmat walks an organisation through the 47-question Open Data Maturity
assessment, scores it across five themes and exports the report.

Run without a subcommand to start the assessment in the terminal.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAssess(cmd)
	},
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ODMAT_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/odmat/config.yaml)")

	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(surveyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfigPath returns the --config flag or the default path.
func resolveConfigPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the config file named by --config.
func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	path, err := resolveConfigPath(cmd)
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, path, err
	}
	return cfg, path, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file (which ODMAT_DB overrides), then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.Database.Path != "" {
		return cfg.Database.Path, store.EnsureDir(cfg.Database.Path)
	}
	return store.DefaultDBPath()
}

// env is what every data-backed subcommand runs on.
type env struct {
	cfg     config.Config
	cfgPath string
	dbPath  string
	store   *store.Store
	log     *zap.Logger
}

// setup loads the config, opens the database and builds the logger.
func setup(cmd *cobra.Command, tui bool) (*env, error) {
	cfg, cfgPath, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	log, err := newLogger(cfg, dbPath, tui)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &env{cfg: cfg, cfgPath: cfgPath, dbPath: dbPath, store: s, log: log}, nil
}

func (e *env) Close() {
	_ = e.log.Sync()
	e.store.Close()
}

// newLogger builds the configured logger. The terminal UI owns stdout and
// stderr, so tui loggers write to a file beside the database unless the
// config names one.
func newLogger(cfg config.Config, dbPath string, tui bool) (*zap.Logger, error) {
	var paths []string
	switch {
	case cfg.Log.File != "":
		paths = []string{cfg.Log.File}
	case tui:
		paths = []string{filepath.Join(filepath.Dir(dbPath), "odmat.log")}
	}
	return logging.New(cfg.Log.Level, cfg.Log.Format, paths...)
}
