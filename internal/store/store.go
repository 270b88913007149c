package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionStore is the persistence boundary consumed by the pipeline and
// the API. The concrete implementation is *Store (pgx-backed); tests use
// the in-memory mock in storetest.
type SessionStore interface {
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	CompleteSession(ctx context.Context, id uuid.UUID, transcript, title string) error
	MarkSessionFailed(ctx context.Context, id uuid.UUID) error
	UpsertAnalysis(ctx context.Context, sessionID uuid.UUID, row AnalysisRow) error
	InsertActionItems(ctx context.Context, sessionID uuid.UUID, items []ActionItemRow) error
	InsertExploration(ctx context.Context, row ExplorationRow) (uuid.UUID, error)
	InsertNotification(ctx context.Context, row NotificationRow) error
	Close()
}

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}
