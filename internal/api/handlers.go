package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/superthinking/clarity/internal/pipeline"
)

type sessionRequest struct {
	SessionID string `json:"sessionId"`
}

type exploreRequest struct {
	SessionID        string `json:"sessionId"`
	AudioURL         string `json:"audioUrl"`
	PatternType      string `json:"patternType"`
	OriginalQuestion string `json:"originalQuestion"`
}

type suggestionsRequest struct {
	Transcript string `json:"transcript"`
}

type notificationRequest struct {
	UserID string         `json:"userId"`
	Title  string         `json:"title"`
	Body   string         `json:"body"`
	Type   string         `json:"type"`
	Data   map[string]any `json:"data"`
}

func decodeSessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.SessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "sessionId must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) processSession(w http.ResponseWriter, r *http.Request) {
	id, ok := decodeSessionID(w, r)
	if !ok {
		return
	}

	if err := s.processor.ProcessSession(r.Context(), id); err != nil {
		s.writeStageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) detectPatterns(w http.ResponseWriter, r *http.Request) {
	id, ok := decodeSessionID(w, r)
	if !ok {
		return
	}

	result, err := s.processor.DetectPatterns(r.Context(), id)
	if err != nil {
		s.writeStageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) explorePattern(w http.ResponseWriter, r *http.Request) {
	var req exploreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" || req.AudioURL == "" || req.PatternType == "" {
		writeError(w, http.StatusBadRequest, "sessionId, audioUrl and patternType are required")
		return
	}
	id, err := uuid.Parse(req.SessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "sessionId must be a valid UUID")
		return
	}

	result, err := s.processor.ExplorePattern(r.Context(), pipeline.ExplorationRequest{
		SessionID:        id,
		AudioURL:         req.AudioURL,
		PatternType:      req.PatternType,
		OriginalQuestion: req.OriginalQuestion,
	})
	if err != nil {
		s.writeStageError(w, err)
		return
	}

	// Processing succeeded, so this is a 200 even when a write failed.
	// The saved flags tell the client what actually landed.
	writeJSON(w, http.StatusOK, map[string]any{
		"status":                 "success",
		"exploration_transcript": result.Transcript,
		"analysis":               result.Analysis,
		"insight_saved":          result.Primary == nil,
		"actions_saved":          result.Secondary == nil,
	})
}

// liveSuggestions never returns a 5xx: the generator degrades internally
// and an unreadable body just yields an empty list.
func (s *Server) liveSuggestions(w http.ResponseWriter, r *http.Request) {
	var req suggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"suggestions": []string{}})
		return
	}

	suggestions := s.suggester.Suggest(r.Context(), req.Transcript)
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (s *Server) sendNotification(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Title == "" || req.Body == "" || req.Type == "" {
		writeError(w, http.StatusBadRequest, "userId, title, body and type are required")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "userId must be a valid UUID")
		return
	}

	if err := s.notifier.Record(r.Context(), userID, req.Title, req.Body, req.Type, req.Data); err != nil {
		s.logger.Error("notification record failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to record notification")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
