package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// CourseProgress is a student's standing in one course.
type CourseProgress struct {
	ent.Schema
}

func (CourseProgress) Fields() []ent.Field {
	return []ent.Field{
		field.String("student_id"),
		field.String("course_id"),
		field.Strings("completed_lesson_ids"),
		field.Int("test_score").
			Optional().
			Nillable().
			Comment("Score of the latest passed test"),
		field.Bool("completed").
			Default(false),
		field.String("last_accessed_lesson").
			Default(""),
		field.Time("started_at"),
		field.Time("updated_at"),
	}
}

func (CourseProgress) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("student_id", "course_id").Unique(),
	}
}
