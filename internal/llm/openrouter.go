package llm

import "fmt"

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// NewOpenRouterProvider creates a provider targeting the OpenRouter API,
// which speaks the OpenAI wire protocol. Strict schemas are off because
// not every routed model honors them; responses are still validated.
func NewOpenRouterProvider(cfg ProviderConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenRouterBaseURL
	}
	return newOpenAICompatible(cfg, nil, false), nil
}
