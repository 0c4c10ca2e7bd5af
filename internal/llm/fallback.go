package llm

import (
	"context"
	"slices"

	"go.uber.org/zap"
)

// FallbackProvider walks an ordered model list until one model answers.
// Each attempt runs through the wrapped provider, so retries and logging
// apply per model.
type FallbackProvider struct {
	inner  Provider
	models []string
	log    *zap.Logger
}

// WithFallback wraps p so that a failed request is re-issued with each model
// in order. The provider's own model is tried first when it is not already
// in the list. With an empty list p is returned unchanged.
func WithFallback(p Provider, models []string, log *zap.Logger) Provider {
	if len(models) == 0 {
		return p
	}
	if log == nil {
		log = zap.NewNop()
	}
	chain := models
	if id := p.ModelID(); id != "" && !slices.Contains(models, id) {
		chain = append([]string{id}, models...)
	}
	return &FallbackProvider{inner: p, models: chain, log: log}
}

// Generate honors an explicit req.Model by trying it alone.
func (f *FallbackProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.Model != "" {
		return f.inner.Generate(ctx, req)
	}

	var attempts []ModelError
	for _, model := range f.models {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attempt := req
		attempt.Model = model
		resp, err := f.inner.Generate(ctx, attempt)
		if err == nil {
			if len(attempts) > 0 {
				f.log.Info("llm fallback model succeeded",
					zap.String("model", model),
					zap.Int("failed_models", len(attempts)))
			}
			return resp, nil
		}
		if isContextErr(err) {
			return nil, err
		}

		f.log.Warn("llm model failed, trying next",
			zap.String("model", model),
			zap.Error(err))
		attempts = append(attempts, ModelError{Model: model, Err: err})
	}
	return nil, &ErrAllModelsFailed{Attempts: attempts}
}

func (f *FallbackProvider) ModelID() string {
	return f.models[0]
}

// Models returns the chain in the order it is tried.
func (f *FallbackProvider) Models() []string {
	return slices.Clone(f.models)
}
