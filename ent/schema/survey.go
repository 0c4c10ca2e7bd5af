package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Survey is a survey definition built through the API.
type Survey struct {
	ent.Schema
}

func (Survey) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("id"),
		field.String("title").
			NotEmpty(),
		field.String("description").
			Default(""),
		field.Enum("status").
			Values("DRAFT", "ACTIVE", "CLOSED", "ARCHIVED").
			Default("DRAFT"),
		field.JSON("schema_json", map[string]any{}).
			Optional(),
		field.Int64("created_by").
			Comment("Owning user id"),
		field.Time("created_at").
			Immutable(),
		field.Time("updated_at"),
	}
}

func (Survey) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("created_by"),
	}
}
