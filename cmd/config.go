package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nashtech/odmat/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		path, err := resolveConfigPath(cmd)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if err := config.Save(path, config.Default()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg.Redacted())
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# %s\n", path)
		_, err = out.Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}
