package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AttemptLedger counts a student's attempts at one test lesson.
type AttemptLedger struct {
	ent.Schema
}

func (AttemptLedger) Fields() []ent.Field {
	return []ent.Field{
		field.String("student_id"),
		field.String("course_id"),
		field.String("lesson_id"),
		field.Int("attempts_used").
			Default(0),
		field.Int("max_attempts").
			Optional().
			Nillable().
			Comment("Null means unlimited"),
		field.Int("best_score").
			Default(0),
		field.Time("last_attempt_at").
			Optional().
			Nillable(),
	}
}

func (AttemptLedger) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("student_id", "lesson_id").Unique(),
		index.Fields("student_id", "course_id"),
	}
}
