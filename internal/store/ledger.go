package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// ledgerRepo implements LedgerRepo over the attempt_ledgers table.
type ledgerRepo struct {
	db *sql.DB
}

var ledgerSelect = []string{
	"student_id", "course_id", "lesson_id", "attempts_used",
	"max_attempts", "best_score", "last_attempt_at",
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *ledgerRepo) Get(ctx context.Context, studentID, lessonID string) (*LedgerRow, error) {
	return getLedger(ctx, r.db, studentID, lessonID)
}

func getLedger(ctx context.Context, q querier, studentID, lessonID string) (*LedgerRow, error) {
	query, args := builder().Select(ledgerSelect...).
		From(entsql.Table(tableLedgers)).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("lesson_id", lessonID),
		)).
		Query()

	l, err := scanLedger(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ledger: %w", err)
	}
	return l, nil
}

func (r *ledgerRepo) RecordAttempt(ctx context.Context, rec AttemptRecord) (*LedgerRow, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	cur, err := getLedger(ctx, tx, rec.StudentID, rec.LessonID)
	if err != nil {
		return nil, err
	}

	at := rec.At.UTC()
	var query string
	var args []any
	if cur == nil {
		cur = &LedgerRow{
			StudentID:     rec.StudentID,
			CourseID:      rec.CourseID,
			LessonID:      rec.LessonID,
			AttemptsUsed:  1,
			MaxAttempts:   rec.MaxAttempts,
			BestScore:     rec.Score,
			LastAttemptAt: &at,
		}
		query, args = builder().Insert(tableLedgers).
			Columns(ledgerSelect...).
			Values(cur.StudentID, cur.CourseID, cur.LessonID, cur.AttemptsUsed,
				nullInt(cur.MaxAttempts), cur.BestScore, at).
			Query()
	} else {
		if m := rec.MaxAttempts; m != nil && *m > 0 && cur.AttemptsUsed >= *m {
			return nil, ErrAttemptsExhausted
		}
		cur.AttemptsUsed++
		cur.BestScore = max(cur.BestScore, rec.Score)
		cur.MaxAttempts = rec.MaxAttempts
		cur.LastAttemptAt = &at
		query, args = builder().Update(tableLedgers).
			Set("attempts_used", cur.AttemptsUsed).
			Set("best_score", cur.BestScore).
			Set("max_attempts", nullInt(cur.MaxAttempts)).
			Set("last_attempt_at", at).
			Where(entsql.And(
				entsql.EQ("student_id", rec.StudentID),
				entsql.EQ("lesson_id", rec.LessonID),
			)).
			Query()
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return cur, nil
}

func (r *ledgerRepo) List(ctx context.Context, studentID, courseID string) ([]LedgerRow, error) {
	query, args := builder().Select(ledgerSelect...).
		From(entsql.Table(tableLedgers)).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("course_id", courseID),
		)).
		OrderBy("lesson_id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}
	defer rows.Close()

	var out []LedgerRow
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *ledgerRepo) DeleteCourse(ctx context.Context, studentID, courseID string) error {
	query, args := builder().Delete(tableLedgers).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("course_id", courseID),
		)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete ledgers: %w", err)
	}
	return nil
}

func scanLedger(row scanner) (*LedgerRow, error) {
	var (
		l    LedgerRow
		maxA sql.NullInt64
		last sql.NullTime
	)
	if err := row.Scan(&l.StudentID, &l.CourseID, &l.LessonID, &l.AttemptsUsed, &maxA, &l.BestScore, &last); err != nil {
		return nil, err
	}
	l.MaxAttempts = intPtr(maxA)
	if last.Valid {
		t := last.Time
		l.LastAttemptAt = &t
	}
	return &l, nil
}
