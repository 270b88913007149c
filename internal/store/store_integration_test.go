//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func seedSession(t *testing.T, s *Store, duration int) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id := uuid.New()
	userID := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, audio_url, duration_seconds, processing_status)
		VALUES ($1, $2, $3, $4, 'pending')`,
		id, userID, "https://audio.example.com/"+id.String()+".m4a", duration,
	)
	if err != nil {
		t.Fatalf("seed session failed: %v", err)
	}
	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM action_items WHERE session_id = $1", id)
		s.pool.Exec(ctx, "DELETE FROM session_analysis WHERE session_id = $1", id)
		s.pool.Exec(ctx, "DELETE FROM pattern_exploration_insights WHERE session_id = $1", id)
		s.pool.Exec(ctx, "DELETE FROM sessions WHERE id = $1", id)
	})
	return id
}

func TestIntegration_SessionLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	id := seedSession(t, s, 620)

	sess, err := s.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess.ProcessingStatus != StatusPending {
		t.Errorf("expected pending, got %q", sess.ProcessingStatus)
	}
	if sess.DurationSeconds != 620 {
		t.Errorf("expected duration 620, got %d", sess.DurationSeconds)
	}

	if err := s.CompleteSession(ctx, id, "transcript text", "Test Title"); err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}

	sess, err = s.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("GetSession after complete failed: %v", err)
	}
	if sess.ProcessingStatus != StatusCompleted {
		t.Errorf("expected completed, got %q", sess.ProcessingStatus)
	}
	if sess.RawTranscript != "transcript text" {
		t.Errorf("expected transcript, got %q", sess.RawTranscript)
	}
	if sess.Title != "Test Title" {
		t.Errorf("expected title, got %q", sess.Title)
	}

	if err := s.MarkSessionFailed(ctx, id); err != nil {
		t.Fatalf("MarkSessionFailed failed: %v", err)
	}
	sess, _ = s.GetSession(ctx, id)
	if sess.ProcessingStatus != StatusFailed {
		t.Errorf("expected failed, got %q", sess.ProcessingStatus)
	}
}

func TestIntegration_GetSession_NotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetSession(context.Background(), uuid.New())
	if err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestIntegration_UpsertAnalysis_ReplacesRow(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	id := seedSession(t, s, 300)

	row := AnalysisRow{
		SummaryBefore:      "worried",
		SummaryAfter:       "calmer",
		ProblemFocusPct:    70,
		SolutionFocusPct:   30,
		ShiftPct:           40,
		ThinkingStyle:      "Strategic Connector",
		ThinkingPatterns:   map[string]float64{"overthinking": 60},
		BestIdeas:          []string{"split the work"},
		StrengthHighlight:  "persistence",
		PositiveQuotes:     []string{"I can do this"},
		ResourcesMentioned: []string{},
		DurationMinutes:    5,
	}
	if err := s.UpsertAnalysis(ctx, id, row); err != nil {
		t.Fatalf("UpsertAnalysis failed: %v", err)
	}

	// Second upsert must replace, not duplicate.
	row.SummaryBefore = "very worried"
	if err := s.UpsertAnalysis(ctx, id, row); err != nil {
		t.Fatalf("UpsertAnalysis (replace) failed: %v", err)
	}

	var count int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM session_analysis WHERE session_id = $1", id).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 analysis row, got %d", count)
	}

	var summary string
	if err := s.pool.QueryRow(ctx, "SELECT summary_before FROM session_analysis WHERE session_id = $1", id).Scan(&summary); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if summary != "very worried" {
		t.Errorf("expected replaced summary, got %q", summary)
	}
}

func TestIntegration_ActionItemsAppend(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	id := seedSession(t, s, 300)

	batch := []ActionItemRow{
		{Description: "Write the outline", Category: "next_step", Priority: "high", Source: "user_stated"},
		{Description: "Ask for help", Category: "next_step", Priority: "medium", Source: "ai_suggested"},
	}

	if err := s.InsertActionItems(ctx, id, batch); err != nil {
		t.Fatalf("InsertActionItems failed: %v", err)
	}
	// Action items append; a second run does not deduplicate.
	if err := s.InsertActionItems(ctx, id, batch); err != nil {
		t.Fatalf("InsertActionItems (append) failed: %v", err)
	}
	// Empty batch is a no-op.
	if err := s.InsertActionItems(ctx, id, nil); err != nil {
		t.Fatalf("empty batch should be a no-op, got %v", err)
	}

	var count int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM action_items WHERE session_id = $1", id).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 action items after two batches, got %d", count)
	}

	var status string
	if err := s.pool.QueryRow(ctx, "SELECT status FROM action_items WHERE session_id = $1 LIMIT 1", id).Scan(&status); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if status != "pending" {
		t.Errorf("expected initial status pending, got %q", status)
	}
}

func TestIntegration_InsertExploration(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	id := seedSession(t, s, 300)

	row := ExplorationRow{
		SessionID:             id,
		PatternType:           "rumination",
		OriginalQuestion:      "What would change if the deadline moved?",
		ExplorationTranscript: "I think it is about control.",
		Insight:               "You noticed the worry is about control.",
		KeyRealization:        "You realized the deadline was negotiable.",
		Encouragement:         "You showed real courage exploring this.",
		AudioURL:              "https://audio.example.com/exploration.m4a",
	}

	first, err := s.InsertExploration(ctx, row)
	if err != nil {
		t.Fatalf("InsertExploration failed: %v", err)
	}
	if first == uuid.Nil {
		t.Fatal("expected non-nil exploration id")
	}

	// Explorations accumulate; no uniqueness constraint.
	second, err := s.InsertExploration(ctx, row)
	if err != nil {
		t.Fatalf("InsertExploration (second) failed: %v", err)
	}
	if second == first {
		t.Error("expected distinct exploration ids")
	}
}

func TestIntegration_InsertNotification(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	err := s.InsertNotification(ctx, NotificationRow{
		UserID: userID,
		Title:  "Session ready",
		Body:   "Your session analysis is ready.",
		Type:   "task_reminder",
		Data:   map[string]any{"session_id": uuid.New().String()},
	})
	if err != nil {
		t.Fatalf("InsertNotification failed: %v", err)
	}

	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM user_notifications WHERE user_id = $1", userID)
	})
}
