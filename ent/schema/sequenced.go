package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/mixin"
)

// Sequenced stamps append-only rows with their place in the store-wide
// sequence and the UTC time they were written.
type Sequenced struct {
	mixin.Schema
}

func (Sequenced) Fields() []ent.Field {
	seq := field.Int64("sequence").Unique().Immutable()
	at := field.Time("timestamp").Default(time.Now).Immutable()
	return []ent.Field{seq, at}
}
