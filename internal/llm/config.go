package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
	ProviderNone       = "none"
)

// DefaultFallbackModels is the Gemini model chain tried in order when the
// configured model fails.
var DefaultFallbackModels = []string{
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-2.5-flash",
	"gemini-1.5-flash",
	"gemini-pro",
}

// Config holds all LLM provider configuration. It is embedded in the
// application config file under the "llm" key.
type Config struct {
	// Provider selects the backend: gemini, openai, anthropic, openrouter,
	// mock, or none to always use canned recommendations.
	Provider string `yaml:"provider"`

	Gemini     ProviderConfig `yaml:"gemini"`
	OpenAI     ProviderConfig `yaml:"openai"`
	Anthropic  ProviderConfig `yaml:"anthropic"`
	OpenRouter ProviderConfig `yaml:"openrouter"`
	Retry      RetryConfig    `yaml:"retry"`

	// FallbackModels are tried in order after the configured model fails.
	// Only used with the gemini provider unless set explicitly.
	FallbackModels []string `yaml:"fallback_models,omitempty"`

	// Timeout bounds a single Generate call including retries and fallback.
	Timeout time.Duration `yaml:"timeout"`
}

// ProviderConfig holds the credentials and model for one backend.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderGemini,
		Gemini:     ProviderConfig{Model: "gemini-2.0-flash"},
		OpenAI:     ProviderConfig{Model: "gpt-4o-mini"},
		Anthropic:  ProviderConfig{Model: "claude-haiku"},
		OpenRouter: ProviderConfig{Model: "google/gemini-2.0-flash-001", BaseURL: defaultOpenRouterBaseURL},
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ApplyEnv overlays ODMAT_LLM_* variables and then the vendors' standard
// API key variables onto cfg. Explicit ODMAT_ keys win.
func ApplyEnv(cfg *Config) {
	if p := os.Getenv("ODMAT_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	if m := os.Getenv("ODMAT_LLM_MODEL"); m != "" {
		if pc := cfg.providerConfig(cfg.Provider); pc != nil {
			pc.Model = m
		}
	}
	if k := os.Getenv("ODMAT_LLM_API_KEY"); k != "" {
		if pc := cfg.providerConfig(cfg.Provider); pc != nil {
			pc.APIKey = k
		}
	}
	if fb := os.Getenv("ODMAT_LLM_FALLBACK_MODELS"); fb != "" {
		cfg.FallbackModels = splitList(fb)
	}

	vendorKeys := []struct {
		env string
		pc  *ProviderConfig
	}{
		{"GEMINI_API_KEY", &cfg.Gemini},
		{"OPENAI_API_KEY", &cfg.OpenAI},
		{"ANTHROPIC_API_KEY", &cfg.Anthropic},
		{"OPENROUTER_API_KEY", &cfg.OpenRouter},
	}
	for _, vk := range vendorKeys {
		if vk.pc.APIKey == "" {
			vk.pc.APIKey = os.Getenv(vk.env)
		}
	}
}

// Discover picks the first provider with an API key, probing in priority
// order Gemini → OpenAI → Anthropic → OpenRouter. It leaves cfg untouched
// and returns false when no key is available.
func Discover(cfg *Config) bool {
	for _, name := range []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter} {
		if pc := cfg.providerConfig(name); pc != nil && pc.APIKey != "" {
			cfg.Provider = name
			return true
		}
	}
	return false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderMock, ProviderNone:
		return nil
	}
	pc := c.providerConfig(c.Provider)
	if pc == nil {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if pc.APIKey == "" {
		return fmt.Errorf("an API key is required for the %s provider (set ODMAT_LLM_API_KEY or %s_API_KEY)",
			c.Provider, strings.ToUpper(c.Provider))
	}
	return nil
}

// Fallbacks returns the model chain for the configured provider.
func (c Config) Fallbacks() []string {
	if len(c.FallbackModels) > 0 {
		return c.FallbackModels
	}
	if c.Provider == ProviderGemini {
		return DefaultFallbackModels
	}
	return nil
}

func (c *Config) providerConfig(name string) *ProviderConfig {
	switch name {
	case ProviderGemini:
		return &c.Gemini
	case ProviderOpenAI:
		return &c.OpenAI
	case ProviderAnthropic:
		return &c.Anthropic
	case ProviderOpenRouter:
		return &c.OpenRouter
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
