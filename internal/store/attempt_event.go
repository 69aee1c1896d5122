package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var attemptSelect = []string{
	"id", "sequence", "timestamp", "session_id", "student_id", "course_id",
	"lesson_id", "test_id", "score", "earned_points", "total_points",
	"passed", "pending_manual", "end_reason", "duration_secs", "answers",
}

func (r *eventRepo) AppendAttempt(ctx context.Context, data AttemptEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	var answers sql.NullString
	if len(data.Answers) > 0 {
		b, err := json.Marshal(data.Answers)
		if err != nil {
			return fmt.Errorf("marshal answers: %w", err)
		}
		answers = sql.NullString{String: string(b), Valid: true}
	}

	query, args := builder().Insert(tableAttempts).
		Columns(attemptSelect[1:]...).
		Values(
			seqNum, now(), data.SessionID, data.StudentID, data.CourseID,
			data.LessonID, data.TestID, data.Score, data.EarnedPoints, data.TotalPoints,
			data.Passed, data.PendingManual, data.EndReason, data.DurationSecs, answers,
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save attempt event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryAttempts(ctx context.Context, studentID, courseID, lessonID string, opts QueryOpts) ([]AttemptEvent, error) {
	sel := builder().Select(attemptSelect...).
		From(entsql.Table(tableAttempts)).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("course_id", courseID),
		))
	if lessonID != "" {
		sel.Where(entsql.EQ("lesson_id", lessonID))
	}
	query, args := window(sel, opts).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptEvent
	for rows.Next() {
		var (
			e       AttemptEvent
			answers sql.NullString
		)
		err := rows.Scan(
			&e.ID, &e.Sequence, &e.Timestamp, &e.SessionID, &e.StudentID, &e.CourseID,
			&e.LessonID, &e.TestID, &e.Score, &e.EarnedPoints, &e.TotalPoints,
			&e.Passed, &e.PendingManual, &e.EndReason, &e.DurationSecs, &answers,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if answers.Valid {
			if err := json.Unmarshal([]byte(answers.String), &e.Answers); err != nil {
				return nil, fmt.Errorf("unmarshal answers: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) DeleteAttempts(ctx context.Context, studentID, courseID string) error {
	query, args := builder().Delete(tableAttempts).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("course_id", courseID),
		)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete attempts: %w", err)
	}
	return nil
}
