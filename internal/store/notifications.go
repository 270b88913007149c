package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// NotificationRow is one audit entry in the user_notifications log.
// Delivery itself happens downstream; this row only records the dispatch.
type NotificationRow struct {
	UserID uuid.UUID
	Title  string
	Body   string
	Type   string
	Data   map[string]any
}

// InsertNotification appends a notification audit row.
func (s *Store) InsertNotification(ctx context.Context, row NotificationRow) error {
	data := row.Data
	if data == nil {
		data = map[string]any{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal notification data: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO user_notifications (id, user_id, title, body, type, data, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`,
		uuid.New(), row.UserID, row.Title, row.Body, row.Type, payload,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
