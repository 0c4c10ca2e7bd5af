package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AssessmentEvent records a single wizard mutation: an answer, a step
// change, completion or reset.
type AssessmentEvent struct {
	ent.Schema
}

func (AssessmentEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (AssessmentEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("assessment_id"),
		field.Enum("kind").
			Values("answer", "step", "complete", "reset"),
		field.Int("question_id").
			Default(0),
		field.Int("step").
			Default(0),
		field.Int("score").
			Default(0).
			Comment("1-5 for answer events"),
	}
}

func (AssessmentEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("assessment_id"),
	}
}
