package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/superthinking/clarity/internal/events"
	"github.com/superthinking/clarity/internal/store"
)

// Publisher is the event-bus surface the notifier needs.
type Publisher interface {
	Publish(subject string, data any) error
}

// Notifier records notification dispatches. The audit row is the source
// of truth; the bus publish is fire-and-forget so delivery problems never
// fail the request.
type Notifier struct {
	store  store.SessionStore
	bus    Publisher
	logger *slog.Logger
}

func New(s store.SessionStore, bus Publisher, logger *slog.Logger) *Notifier {
	return &Notifier{store: s, bus: bus, logger: logger}
}

// Record writes the audit row and hands the notification to the push
// pipeline via the event bus.
func (n *Notifier) Record(ctx context.Context, userID uuid.UUID, title, body, notifType string, data map[string]any) error {
	row := store.NotificationRow{
		UserID: userID,
		Title:  title,
		Body:   body,
		Type:   notifType,
		Data:   data,
	}
	if err := n.store.InsertNotification(ctx, row); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}

	n.logger.Info("notification recorded", "user_id", userID, "type", notifType)

	if n.bus != nil {
		if err := n.bus.Publish(events.SubjectNotificationQueued, map[string]any{
			"user_id": userID.String(),
			"title":   title,
			"body":    body,
			"type":    notifType,
			"data":    data,
		}); err != nil {
			n.logger.Warn("failed to publish notification event", "error", err)
		}
	}
	return nil
}
