package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// AnalysisRow is the persisted shape of a session analysis. Exactly one
// row exists per session; reprocessing replaces it.
type AnalysisRow struct {
	SummaryBefore      string
	SummaryAfter       string
	ProblemFocusPct    int
	SolutionFocusPct   int
	ShiftPct           int
	ThinkingStyle      string
	ThinkingPatterns   map[string]float64
	BestIdeas          []string
	StrengthHighlight  string
	PositiveQuotes     []string
	ResourcesMentioned []string
	DurationMinutes    int
}

// UpsertAnalysis writes the analysis row keyed on session_id, replacing
// any prior row for the same session.
func (s *Store) UpsertAnalysis(ctx context.Context, sessionID uuid.UUID, row AnalysisRow) error {
	patterns, err := json.Marshal(row.ThinkingPatterns)
	if err != nil {
		return fmt.Errorf("marshal thinking patterns: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO session_analysis (
			id, session_id, summary_before, summary_after,
			problem_focus_percentage, solution_focus_percentage, shift_percentage,
			thinking_style_today, thinking_patterns, best_ideas, strength_highlight,
			positive_quotes, resources_mentioned, session_duration_minutes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())
		ON CONFLICT (session_id)
		DO UPDATE SET
			summary_before = $3,
			summary_after = $4,
			problem_focus_percentage = $5,
			solution_focus_percentage = $6,
			shift_percentage = $7,
			thinking_style_today = $8,
			thinking_patterns = $9,
			best_ideas = $10,
			strength_highlight = $11,
			positive_quotes = $12,
			resources_mentioned = $13,
			session_duration_minutes = $14,
			updated_at = now()`,
		uuid.New(), sessionID, row.SummaryBefore, row.SummaryAfter,
		row.ProblemFocusPct, row.SolutionFocusPct, row.ShiftPct,
		row.ThinkingStyle, patterns, row.BestIdeas, row.StrengthHighlight,
		row.PositiveQuotes, row.ResourcesMentioned, row.DurationMinutes,
	)
	if err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}
	return nil
}
