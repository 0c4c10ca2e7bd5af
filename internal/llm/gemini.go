package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// geminiModels maps friendly names to Gemini model IDs.
var geminiModels = map[string]string{
	"gemini-flash":      "gemini-2.0-flash",
	"gemini-flash-lite": "gemini-2.0-flash-lite",
}

// GeminiProvider implements Provider using the Google Gen AI SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg ProviderConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  resolveModel(cfg.Model, geminiModels),
	}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	model := resolveModel(modelFor(req, p.model), geminiModels)

	config := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		config.Temperature = &temp
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = buildGeminiSchema(req.Schema.Definition)
	}

	result, err := p.client.Models.GenerateContent(ctx, model, buildGeminiContents(req.Messages), config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	content := json.RawMessage(result.Text())
	stop := mapGeminiStopReason(result)
	if stop == "max_tokens" {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if req.Schema != nil {
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}

	resp := &Response{
		Content:    content,
		Model:      model,
		StopReason: stop,
	}
	if result.ModelVersion != "" {
		resp.Model = result.ModelVersion
	}
	if result.UsageMetadata != nil {
		resp.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func buildGeminiContents(msgs []Message) []*genai.Content {
	out := make([]*genai.Content, len(msgs))
	for i, m := range msgs {
		role := genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		out[i] = genai.NewContentFromText(m.Content, genai.Role(role))
	}
	return out
}

// buildGeminiSchema converts a JSON Schema definition map to a genai.Schema.
// Only the subset Gemini understands is carried over.
func buildGeminiSchema(def map[string]any) *genai.Schema {
	s := &genai.Schema{}
	if t, ok := def["type"].(string); ok {
		s.Type = mapGeminiType(t)
	}
	if desc, ok := def["description"].(string); ok {
		s.Description = desc
	}
	if props, ok := def["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for k, v := range props {
			if propDef, ok := v.(map[string]any); ok {
				s.Properties[k] = buildGeminiSchema(propDef)
			}
		}
	}
	s.Required = stringList(def["required"])
	s.Enum = stringList(def["enum"])
	if items, ok := def["items"].(map[string]any); ok {
		s.Items = buildGeminiSchema(items)
	}
	if n, ok := intValue(def["minItems"]); ok {
		s.MinItems = &n
	}
	if n, ok := intValue(def["maxItems"]); ok {
		s.MaxItems = &n
	}
	return s
}

func mapGeminiType(t string) genai.Type {
	switch t {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func mapGeminiStopReason(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return "max_tokens"
	}
	return "end"
}

func mapGeminiError(err error) error {
	switch code := geminiErrorCode(err); {
	case code == http.StatusTooManyRequests:
		return &ErrRateLimit{Err: err}
	case code >= 500, code == http.StatusNotFound:
		return &ErrProviderUnavailable{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

// geminiErrorCode extracts the HTTP status from an SDK error. The SDK has
// returned APIError both by value and by pointer across releases.
func geminiErrorCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	return 0
}

// stringList accepts both []any (decoded JSON) and []string (Go literals).
func stringList(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		var out []string
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}
