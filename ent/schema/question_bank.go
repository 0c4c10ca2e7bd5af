package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// QuestionBank is a versioned copy of the question bank YAML.
type QuestionBank struct {
	ent.Schema
}

func (QuestionBank) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("version").
			Comment("Semantic version, e.g. v1.0.0"),
		field.Bytes("content"),
		field.Time("created_at").
			Default(time.Now),
	}
}
