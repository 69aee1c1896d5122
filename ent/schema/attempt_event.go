package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AttemptEvent is one submitted test attempt.
type AttemptEvent struct {
	ent.Schema
}

func (AttemptEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{Sequenced{}}
}

func (AttemptEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id"),
		field.String("student_id"),
		field.String("course_id"),
		field.String("lesson_id"),
		field.String("test_id"),
		field.Int("score").
			Comment("Percentage, 0-100"),
		field.Int("earned_points"),
		field.Int("total_points"),
		field.Bool("passed"),
		field.Bool("pending_manual").
			Default(false),
		field.String("end_reason").
			Comment("submit or timeout"),
		field.Int("duration_secs"),
		field.JSON("answers", map[string]any{}).
			Optional(),
	}
}

func (AttemptEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("student_id", "lesson_id"),
	}
}
