package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nashtech/odmat/internal/llm"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"ODMAT_DB", "ODMAT_ADDR", "ODMAT_JWT_SECRET", "ODMAT_LOG_LEVEL", "ODMAT_LOG_FORMAT", "ODMAT_EXPORT_DIR",
		"ODMAT_LLM_PROVIDER", "ODMAT_LLM_MODEL", "ODMAT_LLM_API_KEY", "ODMAT_LLM_FALLBACK_MODELS",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  token_ttl: 2h
log:
  level: debug
llm:
  provider: openai
  openai:
    model: gpt-4o
`), 0o600))
	t.Setenv("ODMAT_LOG_LEVEL", "warn")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Hour, cfg.Server.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout, "unset keys keep defaults")
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.OpenAI.Model)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [1, 2"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Server.JWTSecret = "s3cret"
	cfg.Export.Formats = []string{"pdf"}
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Server.JWTSecret = "s3cret"
	cfg.LLM.Gemini.APIKey = "key"

	r := cfg.Redacted()
	assert.Equal(t, "********", r.Server.JWTSecret)
	assert.Equal(t, "********", r.LLM.Gemini.APIKey)
	assert.Empty(t, r.LLM.OpenAI.APIKey)
	assert.Equal(t, "s3cret", cfg.Server.JWTSecret, "original is untouched")
}

func TestWatch_CancelsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600))

	ctx, cancel, err := Watch(context.Background(), path)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))

	select {
	case <-ctx.Done():
		var changed *ErrChanged
		assert.True(t, errors.As(context.Cause(ctx), &changed))
	case <-time.After(5 * time.Second):
		t.Fatal("watch context was not canceled")
	}
}

func TestWatch_MissingFile(t *testing.T) {
	_, _, err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
