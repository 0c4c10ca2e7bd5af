package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nashtech/odmat/internal/store"
)

// LoggingProvider records every LLM request in the event log.
type LoggingProvider struct {
	inner    Provider
	provider string
	repo     store.EventRepo
	log      *zap.Logger
}

// WithLogging wraps a Provider with event logging. A nil repo disables
// persistence; calls are still traced to log.
func WithLogging(p Provider, providerName string, repo store.EventRepo, log *zap.Logger) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingProvider{inner: p, provider: providerName, repo: repo, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       modelFor(req, l.inner.ModelID()),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	l.log.Debug("llm request",
		zap.String("provider", data.Provider),
		zap.String("model", data.Model),
		zap.String("purpose", data.Purpose),
		zap.Duration("latency", latency),
		zap.Bool("success", data.Success))

	if l.repo != nil {
		if logErr := l.repo.AppendLLMRequest(ctx, data); logErr != nil {
			l.log.Warn("failed to record llm request event", zap.Error(logErr))
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest renders the request as readable text for the event log.
func serializeRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
