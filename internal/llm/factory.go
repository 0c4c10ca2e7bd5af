package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nashtech/odmat/internal/store"
)

// NewProvider builds the configured provider wrapped in its middleware:
// caller → fallback → retry → logging → base. It returns (nil, nil) for
// the "none" provider so callers fall back to canned output.
func NewProvider(ctx context.Context, cfg Config, repo store.EventRepo, log *zap.Logger) (Provider, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var base Provider
	var err error
	switch cfg.Provider {
	case ProviderNone:
		return nil, nil
	case ProviderMock:
		return NewMockProvider(), nil
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, cfg.Provider, repo, log.Named("llm"))
	retried := WithRetry(logged, cfg.Retry)
	return WithFallback(retried, cfg.Fallbacks(), log.Named("llm")), nil
}
