package llm

import (
	"slices"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderGemini {
		t.Fatalf("expected gemini default, got %q", cfg.Provider)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Fatalf("unexpected default model %q", cfg.Gemini.Model)
	}
	if !slices.Equal(cfg.Fallbacks(), DefaultFallbackModels) {
		t.Fatalf("expected default gemini fallback chain, got %v", cfg.Fallbacks())
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ODMAT_LLM_PROVIDER", "openai")
	t.Setenv("ODMAT_LLM_MODEL", "gpt-4.1-mini")
	t.Setenv("ODMAT_LLM_API_KEY", "sk-explicit")
	t.Setenv("ODMAT_LLM_FALLBACK_MODELS", "a, b,,c")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "sk-vendor")

	cfg := DefaultConfig()
	ApplyEnv(&cfg)

	if cfg.Provider != ProviderOpenAI {
		t.Fatalf("provider = %q", cfg.Provider)
	}
	if cfg.OpenAI.Model != "gpt-4.1-mini" {
		t.Fatalf("model = %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.APIKey != "sk-explicit" {
		t.Fatalf("explicit key should win, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.Gemini.APIKey != "g-key" {
		t.Fatalf("gemini key = %q", cfg.Gemini.APIKey)
	}
	if !slices.Equal(cfg.FallbackModels, []string{"a", "b", "c"}) {
		t.Fatalf("fallbacks = %v", cfg.FallbackModels)
	}
}

func TestDiscover(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ""
	if Discover(&cfg) {
		t.Fatal("expected no provider without keys")
	}

	cfg.Anthropic.APIKey = "a"
	cfg.OpenRouter.APIKey = "o"
	if !Discover(&cfg) || cfg.Provider != ProviderAnthropic {
		t.Fatalf("expected anthropic, got %q", cfg.Provider)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"gemini without key", func(c *Config) {}, true},
		{"gemini with key", func(c *Config) { c.Gemini.APIKey = "k" }, false},
		{"mock", func(c *Config) { c.Provider = ProviderMock }, false},
		{"none", func(c *Config) { c.Provider = ProviderNone }, false},
		{"unknown", func(c *Config) { c.Provider = "bard" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFallbacks_NonGeminiHasNone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderOpenAI
	if got := cfg.Fallbacks(); got != nil {
		t.Fatalf("expected no fallbacks, got %v", got)
	}
}
