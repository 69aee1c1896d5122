package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// sequence hands out the store-wide event order. Attempt and LLM request
// rows share it, so an attempt sorts before the feedback request it caused
// even though the two live in different tables.
type sequence struct {
	mu sync.Mutex
	db *sql.DB
}

func (s *sequence) seed(ctx context.Context) error {
	query, args := builder().Insert(tableSequence).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.DoNothing()).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("seed sequence: %w", err)
	}
	return nil
}

// Next returns the next number and advances the counter.
func (s *sequence) Next(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	err := s.db.QueryRowContext(ctx,
		"UPDATE "+tableSequence+" SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1",
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return n, nil
}
