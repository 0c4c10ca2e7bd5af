// Package recommend asks an LLM for improvement recommendations based on a
// scored maturity assessment.
package recommend

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nashtech/odmat/internal/assessment"
	"github.com/nashtech/odmat/internal/llm"
	"github.com/nashtech/odmat/internal/metrics"
	"github.com/nashtech/odmat/internal/questions"
)

// ErrNoProvider is returned when no LLM provider is configured.
var ErrNoProvider = errors.New("recommend: no LLM provider configured")

// Recommendation sources reported in metrics.
const (
	sourceLLM      = "llm"
	sourceSalvaged = "salvaged"
	sourceFallback = "fallback"
)

// Schema is the structured output requested from providers that support it.
var Schema = &llm.Schema{
	Name:        "recommendations",
	Description: "Actionable recommendations to improve open data maturity",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"recommendations": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 1,
				"maxItems": 8,
			},
		},
		"required":             []any{"recommendations"},
		"additionalProperties": false,
	},
}

// Generator implements assessment.Recommender on top of an llm.Provider.
type Generator struct {
	provider  llm.Provider
	bank      *questions.Bank
	log       *zap.Logger
	maxTokens int
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the generator logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// WithMaxTokens caps the response length.
func WithMaxTokens(n int) Option {
	return func(g *Generator) { g.maxTokens = n }
}

// New creates a Generator. A nil provider is allowed; Recommend then
// returns the fallback list with ErrNoProvider.
func New(p llm.Provider, bank *questions.Bank, opts ...Option) *Generator {
	g := &Generator{provider: p, bank: bank, log: zap.NewNop(), maxTokens: 1024}
	for _, o := range opts {
		o(g)
	}
	return g
}

var _ assessment.Recommender = (*Generator)(nil)

// Recommend asks the provider for recommendations. On failure it returns
// the fallback list together with the error so callers can log it.
func (g *Generator) Recommend(ctx context.Context, res assessment.Result, answers assessment.Answers) ([]string, error) {
	if g.provider == nil {
		metrics.Recommendations.WithLabelValues(sourceFallback).Inc()
		return assessment.FallbackRecommendations(), ErrNoProvider
	}

	req := llm.Prompt(systemPrompt, BuildPrompt(g.bank, res, answers))
	req.Schema = Schema
	req.MaxTokens = g.maxTokens
	req.Temperature = 0.7

	resp, err := g.provider.Generate(llm.WithPurpose(ctx, llm.PurposeRecommendations), req)
	if err != nil {
		// Models that ignore the schema often still answer with a usable list.
		if recs, ok := g.salvage(err); ok {
			metrics.Recommendations.WithLabelValues(sourceSalvaged).Inc()
			return recs, nil
		}
		g.log.Warn("recommendation generation failed", zap.Error(err))
		metrics.Recommendations.WithLabelValues(sourceFallback).Inc()
		return assessment.FallbackRecommendations(), fmt.Errorf("generate recommendations: %w", err)
	}

	recs, err := Parse(resp.Text())
	if err != nil {
		metrics.Recommendations.WithLabelValues(sourceFallback).Inc()
		return assessment.FallbackRecommendations(), err
	}
	g.log.Debug("recommendations generated",
		zap.String("model", resp.Model),
		zap.Int("count", len(recs)))
	metrics.Recommendations.WithLabelValues(sourceLLM).Inc()
	return recs, nil
}

// salvage parses the raw content carried by invalid-response errors,
// including those wrapped by the fallback decorator.
func (g *Generator) salvage(err error) ([]string, bool) {
	var inv *llm.ErrInvalidResponse
	if !errors.As(err, &inv) || len(inv.Content) == 0 {
		return nil, false
	}
	recs, perr := Parse(string(inv.Content))
	if perr != nil {
		return nil, false
	}
	g.log.Info("salvaged recommendations from non-conforming response", zap.Int("count", len(recs)))
	return recs, true
}
