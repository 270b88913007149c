package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrSessionNotFound reports a session id with no accessible row.
var ErrSessionNotFound = errors.New("session not found")

// Status is the closed processing-status set for a session. Sessions are
// created externally as pending; the pipeline only ever writes completed
// or failed.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether moving to the target status is legal.
// Reprocessing a completed or failed session is allowed (the analysis
// upsert overwrites); transitions back to pending or processing are not
// issued by this service and are rejected.
func (s Status) CanTransition(to Status) bool {
	if !s.Valid() || !to.Valid() {
		return false
	}
	switch to {
	case StatusCompleted, StatusFailed:
		return true
	case StatusProcessing:
		return s == StatusPending
	default:
		return false
	}
}

// Session is one recorded thinking session.
type Session struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	AudioURL         string
	DurationSeconds  int
	ProcessingStatus Status
	RawTranscript    string
	Title            string
}

// GetSession loads a session row by id.
func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, COALESCE(audio_url, ''), COALESCE(duration_seconds, 0),
		       COALESCE(processing_status, 'pending'), COALESCE(raw_transcript, ''), COALESCE(title, '')
		FROM sessions WHERE id = $1`, id)

	var sess Session
	err := row.Scan(&sess.ID, &sess.UserID, &sess.AudioURL, &sess.DurationSeconds,
		&sess.ProcessingStatus, &sess.RawTranscript, &sess.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

// CompleteSession writes the transcript and title and moves the session
// to completed. Retries overwrite; the row is keyed by id.
func (s *Store) CompleteSession(ctx context.Context, id uuid.UUID, transcript, title string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE sessions
		SET raw_transcript = $1, processing_status = $2, title = $3
		WHERE id = $4`,
		transcript, StatusCompleted, title, id,
	)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// MarkSessionFailed flips the session to failed. Callers treat this as
// best-effort; a failure here must not mask the original stage error.
func (s *Store) MarkSessionFailed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE sessions SET processing_status = $1 WHERE id = $2`,
		StatusFailed, id,
	)
	if err != nil {
		return fmt.Errorf("mark session failed: %w", err)
	}
	return nil
}
