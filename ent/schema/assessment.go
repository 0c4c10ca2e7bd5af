package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Assessment is one participant's assessment document. Answers, details
// and results are stored as JSON so a resumed wizard gets back exactly
// what it saved.
type Assessment struct {
	ent.Schema
}

func (Assessment) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Immutable().
			Comment("UUID assigned on first save"),
		field.String("email").
			Default("").
			Comment("Normalized participant email, used to resume"),
		field.Bool("completed").
			Default(false),
		field.Int("current_step").
			Default(0),
		field.JSON("user_details", map[string]string{}).
			Optional(),
		field.JSON("answers", []map[string]any{}),
		field.JSON("results", map[string]any{}).
			Optional(),
		field.Time("start_time"),
		field.Time("end_time").
			Optional().
			Nillable(),
		field.Time("created_at").
			Immutable(),
		field.Time("updated_at"),
	}
}

func (Assessment) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("email", "completed"),
	}
}
