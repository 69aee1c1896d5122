package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// progressRepo implements ProgressRepo over the course_progress table.
type progressRepo struct {
	db *sql.DB
}

var progressSelect = []string{
	"student_id", "course_id", "completed_lesson_ids", "test_score",
	"completed", "last_accessed_lesson", "started_at", "updated_at",
}

func (r *progressRepo) Get(ctx context.Context, studentID, courseID string) (*CourseProgress, error) {
	query, args := builder().Select(progressSelect...).
		From(entsql.Table(tableProgress)).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("course_id", courseID),
		)).
		Query()

	p, err := scanProgress(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return p, nil
}

func (r *progressRepo) Save(ctx context.Context, p *CourseProgress) error {
	ids := p.CompletedLessonIDs
	if ids == nil {
		ids = []string{}
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal completed lessons: %w", err)
	}

	query, args := builder().Insert(tableProgress).
		Columns(progressSelect...).
		Values(
			p.StudentID, p.CourseID, string(idsJSON), nullInt(p.TestScore),
			p.Completed, p.LastAccessedLesson, p.StartedAt.UTC(), p.UpdatedAt.UTC(),
		).
		OnConflict(
			entsql.ConflictColumns("student_id", "course_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (r *progressRepo) Delete(ctx context.Context, studentID, courseID string) error {
	query, args := builder().Delete(tableProgress).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("course_id", courseID),
		)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

func (r *progressRepo) List(ctx context.Context, studentID string) ([]CourseProgress, error) {
	query, args := builder().Select(progressSelect...).
		From(entsql.Table(tableProgress)).
		Where(entsql.EQ("student_id", studentID)).
		OrderBy("course_id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var out []CourseProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProgress(row scanner) (*CourseProgress, error) {
	var (
		p         CourseProgress
		idsJSON   string
		testScore sql.NullInt64
	)
	err := row.Scan(
		&p.StudentID, &p.CourseID, &idsJSON, &testScore,
		&p.Completed, &p.LastAccessedLesson, &p.StartedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(idsJSON), &p.CompletedLessonIDs); err != nil {
		return nil, fmt.Errorf("unmarshal completed lessons: %w", err)
	}
	p.TestScore = intPtr(testScore)
	return &p, nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
