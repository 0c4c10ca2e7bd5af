package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// User is a survey builder account.
type User struct {
	ent.Schema
}

func (User) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("id"),
		field.String("email").
			Unique(),
		field.String("password_hash").
			Sensitive(),
		field.Strings("roles"),
		field.Bool("enabled").
			Default(false),
		field.String("verification_code").
			Optional().
			Nillable().
			Sensitive(),
		field.Time("created_at").
			Immutable(),
	}
}
