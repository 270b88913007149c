package storetest

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/superthinking/clarity/internal/store"
)

// Mock is a thread-safe in-memory store.SessionStore for testing.
type Mock struct {
	mu sync.Mutex

	Sessions      map[uuid.UUID]*store.Session
	Analyses      map[uuid.UUID]store.AnalysisRow
	ActionItems   []store.ActionItemRow
	Explorations  []store.ExplorationRow
	Notifications []store.NotificationRow

	CompleteErr     error
	MarkFailedErr   error
	UpsertErr       error
	InsertActionErr error
	ExplorationErr  error
	NotificationErr error

	CompleteCalls     int
	MarkFailedCalls   int
	UpsertCalls       int
	InsertActionCalls int
}

func NewMock() *Mock {
	return &Mock{
		Sessions: make(map[uuid.UUID]*store.Session),
		Analyses: make(map[uuid.UUID]store.AnalysisRow),
	}
}

// SetSession seeds a session row.
func (m *Mock) SetSession(sess *store.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sess
	m.Sessions[sess.ID] = &cp
}

func (m *Mock) GetSession(_ context.Context, id uuid.UUID) (*store.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.Sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

func (m *Mock) CompleteSession(_ context.Context, id uuid.UUID, transcript, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteCalls++
	if m.CompleteErr != nil {
		return m.CompleteErr
	}
	sess, ok := m.Sessions[id]
	if !ok {
		return store.ErrSessionNotFound
	}
	sess.RawTranscript = transcript
	sess.Title = title
	sess.ProcessingStatus = store.StatusCompleted
	return nil
}

func (m *Mock) MarkSessionFailed(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MarkFailedCalls++
	if m.MarkFailedErr != nil {
		return m.MarkFailedErr
	}
	if sess, ok := m.Sessions[id]; ok {
		sess.ProcessingStatus = store.StatusFailed
	}
	return nil
}

func (m *Mock) UpsertAnalysis(_ context.Context, sessionID uuid.UUID, row store.AnalysisRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls++
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.Analyses[sessionID] = row
	return nil
}

func (m *Mock) InsertActionItems(_ context.Context, sessionID uuid.UUID, items []store.ActionItemRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertActionCalls++
	if m.InsertActionErr != nil {
		return m.InsertActionErr
	}
	m.ActionItems = append(m.ActionItems, items...)
	return nil
}

func (m *Mock) InsertExploration(_ context.Context, row store.ExplorationRow) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ExplorationErr != nil {
		return uuid.Nil, m.ExplorationErr
	}
	m.Explorations = append(m.Explorations, row)
	return uuid.New(), nil
}

func (m *Mock) InsertNotification(_ context.Context, row store.NotificationRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.NotificationErr != nil {
		return m.NotificationErr
	}
	m.Notifications = append(m.Notifications, row)
	return nil
}

func (m *Mock) Close() {}
