package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/superthinking/clarity/internal/store/storetest"
)

type fakeBus struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (f *fakeBus) Publish(subject string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subject)
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecord_WritesAuditAndPublishes(t *testing.T) {
	ms := storetest.NewMock()
	bus := &fakeBus{}
	n := New(ms, bus, discardLogger())

	userID := uuid.New()
	err := n.Record(context.Background(), userID, "Session ready", "Your analysis is ready.", "task_reminder", map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ms.Notifications) != 1 {
		t.Fatalf("expected 1 audit row, got %d", len(ms.Notifications))
	}
	if ms.Notifications[0].UserID != userID {
		t.Errorf("unexpected user id %s", ms.Notifications[0].UserID)
	}
	if len(bus.subjects) != 1 || bus.subjects[0] != "clarity.notification.queued" {
		t.Errorf("unexpected published subjects %v", bus.subjects)
	}
}

func TestRecord_StoreFailureIsFatal(t *testing.T) {
	ms := storetest.NewMock()
	ms.NotificationErr = errors.New("db down")
	bus := &fakeBus{}
	n := New(ms, bus, discardLogger())

	err := n.Record(context.Background(), uuid.New(), "t", "b", "daily_prompt", nil)
	if err == nil {
		t.Fatal("expected error when audit write fails")
	}
	if len(bus.subjects) != 0 {
		t.Error("must not publish when the audit write failed")
	}
}

func TestRecord_PublishFailureIsSwallowed(t *testing.T) {
	ms := storetest.NewMock()
	bus := &fakeBus{err: errors.New("nats down")}
	n := New(ms, bus, discardLogger())

	if err := n.Record(context.Background(), uuid.New(), "t", "b", "daily_prompt", nil); err != nil {
		t.Fatalf("publish failure must not fail the request: %v", err)
	}
	if len(ms.Notifications) != 1 {
		t.Errorf("expected audit row despite publish failure, got %d", len(ms.Notifications))
	}
}

func TestRecord_NilBus(t *testing.T) {
	ms := storetest.NewMock()
	n := New(ms, nil, discardLogger())

	if err := n.Record(context.Background(), uuid.New(), "t", "b", "daily_prompt", nil); err != nil {
		t.Fatalf("nil bus must be tolerated: %v", err)
	}
}
