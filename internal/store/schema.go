package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableProgress    = "course_progress"
	tableLedgers     = "attempt_ledgers"
	tableAttempts    = "attempt_events"
	tableLLMRequests = "llm_request_events"
	tableSequence    = "event_sequence"
)

var (
	// ProgressColumns holds one row per (student, course).
	ProgressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "student_id", Type: field.TypeString},
		{Name: "course_id", Type: field.TypeString},
		{Name: "completed_lesson_ids", Type: field.TypeJSON},
		{Name: "test_score", Type: field.TypeInt, Nullable: true},
		{Name: "completed", Type: field.TypeBool, Default: false},
		{Name: "last_accessed_lesson", Type: field.TypeString, Default: ""},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	ProgressTable = &schema.Table{
		Name:       tableProgress,
		Columns:    ProgressColumns,
		PrimaryKey: []*schema.Column{ProgressColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "courseprogress_student_id_course_id",
				Unique:  true,
				Columns: []*schema.Column{ProgressColumns[1], ProgressColumns[2]},
			},
		},
	}

	// LedgerColumns holds one row per (student, test lesson).
	LedgerColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "student_id", Type: field.TypeString},
		{Name: "course_id", Type: field.TypeString},
		{Name: "lesson_id", Type: field.TypeString},
		{Name: "attempts_used", Type: field.TypeInt, Default: 0},
		{Name: "max_attempts", Type: field.TypeInt, Nullable: true},
		{Name: "best_score", Type: field.TypeInt, Default: 0},
		{Name: "last_attempt_at", Type: field.TypeTime, Nullable: true},
	}
	LedgerTable = &schema.Table{
		Name:       tableLedgers,
		Columns:    LedgerColumns,
		PrimaryKey: []*schema.Column{LedgerColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "attemptledger_student_id_lesson_id",
				Unique:  true,
				Columns: []*schema.Column{LedgerColumns[1], LedgerColumns[3]},
			},
			{
				Name:    "attemptledger_student_id_course_id",
				Columns: []*schema.Column{LedgerColumns[1], LedgerColumns[2]},
			},
		},
	}

	// AttemptColumns is the append-only log of submitted attempts.
	AttemptColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString},
		{Name: "student_id", Type: field.TypeString},
		{Name: "course_id", Type: field.TypeString},
		{Name: "lesson_id", Type: field.TypeString},
		{Name: "test_id", Type: field.TypeString},
		{Name: "score", Type: field.TypeInt},
		{Name: "earned_points", Type: field.TypeInt},
		{Name: "total_points", Type: field.TypeInt},
		{Name: "passed", Type: field.TypeBool},
		{Name: "pending_manual", Type: field.TypeBool, Default: false},
		{Name: "end_reason", Type: field.TypeString},
		{Name: "duration_secs", Type: field.TypeInt},
		{Name: "answers", Type: field.TypeJSON, Nullable: true},
	}
	AttemptTable = &schema.Table{
		Name:       tableAttempts,
		Columns:    AttemptColumns,
		PrimaryKey: []*schema.Column{AttemptColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "attemptevent_student_id_lesson_id",
				Columns: []*schema.Column{AttemptColumns[4], AttemptColumns[6]},
			},
		},
	}

	// LLMRequestColumns records every LLM API call.
	LLMRequestColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	LLMRequestTable = &schema.Table{
		Name:       tableLLMRequests,
		Columns:    LLMRequestColumns,
		PrimaryKey: []*schema.Column{LLMRequestColumns[0]},
	}

	// SequenceColumns is a single-row counter shared by the event tables.
	SequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	SequenceTable = &schema.Table{
		Name:       tableSequence,
		Columns:    SequenceColumns,
		PrimaryKey: []*schema.Column{SequenceColumns[0]},
	}

	// Tables lists every table managed by the migrator.
	Tables = []*schema.Table{
		ProgressTable,
		LedgerTable,
		AttemptTable,
		LLMRequestTable,
		SequenceTable,
	}
)
