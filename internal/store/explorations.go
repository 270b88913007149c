package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ExplorationRow records one deeper exploration of a detected pattern.
// No uniqueness constraint applies; explorations accumulate per session.
type ExplorationRow struct {
	SessionID             uuid.UUID
	PatternType           string
	OriginalQuestion      string
	ExplorationTranscript string
	Insight               string
	KeyRealization        string
	Encouragement         string
	AudioURL              string
}

// InsertExploration appends one pattern-exploration insight row.
func (s *Store) InsertExploration(ctx context.Context, row ExplorationRow) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pattern_exploration_insights (
			id, session_id, pattern_type, original_question, exploration_transcript,
			insight, key_realization, encouragement, audio_url, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`,
		id, row.SessionID, row.PatternType, row.OriginalQuestion, row.ExplorationTranscript,
		row.Insight, row.KeyRealization, row.Encouragement, row.AudioURL,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert exploration insight: %w", err)
	}
	return id, nil
}
