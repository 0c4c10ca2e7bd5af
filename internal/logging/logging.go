// Package logging builds the zap loggers used across odmat.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New returns a logger at level writing in format to paths. With no paths
// it writes to stderr.
func New(level, format string, paths ...string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch strings.ToLower(format) {
	case FormatJSON:
		cfg = zap.NewProductionConfig()
	case FormatConsole, "":
		cfg = zap.NewDevelopmentConfig()
		cfg.Development = false
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = lvl > zapcore.DebugLevel
	if len(paths) > 0 {
		cfg.OutputPaths = paths
		cfg.ErrorOutputPaths = paths
	}

	return cfg.Build()
}

// Must is New for callers that cannot continue without a logger.
func Must(level, format string, paths ...string) *zap.Logger {
	l, err := New(level, format, paths...)
	if err != nil {
		panic(err)
	}
	return l
}
