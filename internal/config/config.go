// Package config loads the odmat configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nashtech/odmat/internal/export"
	"github.com/nashtech/odmat/internal/llm"
)

// Config is the full application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Export   ExportConfig   `yaml:"export"`
	LLM      llm.Config     `yaml:"llm"`
}

// DatabaseConfig locates the SQLite file. An empty path uses the default
// data directory.
type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	JWTSecret       string        `yaml:"jwt_secret,omitempty"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Metrics         bool          `yaml:"metrics"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// ExportConfig sets report export defaults.
type ExportConfig struct {
	Dir     string   `yaml:"dir"`
	Formats []string `yaml:"formats"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			TokenTTL:        24 * time.Hour,
			ShutdownTimeout: 10 * time.Second,
			Metrics:         true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Export: ExportConfig{
			Dir:     ".",
			Formats: []string{string(export.FormatExcel), string(export.FormatPDF)},
		},
		LLM: llm.DefaultConfig(),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/odmat/config.yaml or the platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "odmat", "config.yaml"), nil
}

// Load reads path over the defaults and then applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Save writes cfg to path, creating the directory. The file may hold API
// keys so it is private to the user.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Redacted returns a copy with secrets masked for display.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	c.Server.JWTSecret = mask(c.Server.JWTSecret)
	c.LLM.Gemini.APIKey = mask(c.LLM.Gemini.APIKey)
	c.LLM.OpenAI.APIKey = mask(c.LLM.OpenAI.APIKey)
	c.LLM.Anthropic.APIKey = mask(c.LLM.Anthropic.APIKey)
	c.LLM.OpenRouter.APIKey = mask(c.LLM.OpenRouter.APIKey)
	return c
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		env string
		dst *string
	}{
		{"ODMAT_DB", &cfg.Database.Path},
		{"ODMAT_ADDR", &cfg.Server.Addr},
		{"ODMAT_JWT_SECRET", &cfg.Server.JWTSecret},
		{"ODMAT_LOG_LEVEL", &cfg.Log.Level},
		{"ODMAT_LOG_FORMAT", &cfg.Log.Format},
		{"ODMAT_EXPORT_DIR", &cfg.Export.Dir},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
	llm.ApplyEnv(&cfg.LLM)
}
