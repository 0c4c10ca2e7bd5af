package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for LLM interaction.
type Provider interface {
	// Generate sends a prompt to the model. When req.Schema is set the
	// provider asks for structured output and validates Content against it;
	// otherwise Content holds the model's raw text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation. Recommendation prompts are single-turn.
	Messages []Message

	// Schema is the JSON Schema the response must conform to. Nil means
	// free text.
	Schema *Schema

	// Model overrides the provider's configured model for this request.
	// The fallback decorator uses it to walk a model list on one client.
	Model string

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0. Zero leaves the provider
	// default in place.
	Temperature float64
}

// Prompt builds a single-turn request.
func Prompt(system, user string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
	}
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema, kebab-case, e.g. "recommendations".
	// Compiled schemas are cached under it.
	Name string

	// Description is sent to the model to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the validated JSON when a Schema was requested, or the
	// raw response text otherwise.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Text returns Content as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// modelFor picks the per-request override or the provider default.
func modelFor(req Request, configured string) string {
	if req.Model != "" {
		return req.Model
	}
	return configured
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names pass through so callers can use exact IDs.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
