package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMRequestEvent records every recommendation request for cost tracking
// and debugging.
type LLMRequestEvent struct {
	ent.Schema
}

func (LLMRequestEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (LLMRequestEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("provider").
			Comment("Provider name: gemini, openai, anthropic, openrouter"),
		field.String("model").
			Comment("Model ID that served the request"),
		field.String("purpose").
			Comment("Caller label, e.g. recommendations"),
		field.Int("input_tokens").
			Default(0),
		field.Int("output_tokens").
			Default(0),
		field.Int64("latency_ms").
			Default(0).
			Comment("Wall-clock time including the provider round trip"),
		field.Bool("success"),
		field.String("error_message").
			Default(""),
		field.Text("request_body").
			Default(""),
		field.Text("response_body").
			Default(""),
	}
}

func (LLMRequestEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("purpose"),
		index.Fields("success"),
	}
}
