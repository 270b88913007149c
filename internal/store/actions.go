package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ActionItemRow is one suggested next step. Rows are append-only; every
// successful pipeline run adds a new batch without deduplication.
type ActionItemRow struct {
	Description string
	Category    string
	Priority    string
	Source      string
}

// InsertActionItems appends a batch of action items for a session. An
// empty batch is a no-op, not an error.
func (s *Store) InsertActionItems(ctx context.Context, sessionID uuid.UUID, items []ActionItemRow) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, it := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO action_items (id, session_id, description, category, priority, source, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, 'pending', now())`,
			uuid.New(), sessionID, it.Description, it.Category, it.Priority, it.Source,
		)
		if err != nil {
			return fmt.Errorf("insert action item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
