package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/superthinking/clarity/internal/analysis"
	"github.com/superthinking/clarity/internal/pipeline"
)

// SessionProcessor is the pipeline surface the handlers call into.
type SessionProcessor interface {
	ProcessSession(ctx context.Context, sessionID uuid.UUID) error
	DetectPatterns(ctx context.Context, sessionID uuid.UUID) (*analysis.PatternDetection, error)
	ExplorePattern(ctx context.Context, req pipeline.ExplorationRequest) (*pipeline.ExplorationResult, error)
}

// Suggester produces live in-session prompts.
type Suggester interface {
	Suggest(ctx context.Context, transcript string) []string
}

// NotificationRecorder persists and fans out a notification.
type NotificationRecorder interface {
	Record(ctx context.Context, userID uuid.UUID, title, body, notifType string, data map[string]any) error
}

type Server struct {
	router    *chi.Mux
	port      int
	apiToken  string
	processor SessionProcessor
	suggester Suggester
	notifier  NotificationRecorder
	logger    *slog.Logger
}

func NewServer(port int, apiToken string, processor SessionProcessor, suggester Suggester, notifier NotificationRecorder, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		port:      port,
		apiToken:  apiToken,
		processor: processor,
		suggester: suggester,
		notifier:  notifier,
		logger:    logger,
	}

	router.Get("/health", s.health)

	router.Route("/v1", func(r chi.Router) {
		r.Use(s.bearerAuth)

		r.Post("/sessions/process", s.processSession)

		// The patterns and explore endpoints are called straight from the
		// mobile client, so they carry CORS headers and answer preflight.
		r.With(corsHeaders).Post("/sessions/patterns", s.detectPatterns)
		r.With(corsHeaders).Options("/sessions/patterns", preflight)
		r.With(corsHeaders).Post("/sessions/explore", s.explorePattern)
		r.With(corsHeaders).Options("/sessions/explore", preflight)

		r.Post("/suggestions/live", s.liveSuggestions)
		r.Post("/notifications", s.sendNotification)
	})

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// bearerAuth rejects requests without the configured token before any
// pipeline stage runs. CORS preflights carry no Authorization header and
// pass straight through. An empty configured token disables auth for
// local development.
func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if s.apiToken != "" && r.Header.Get("Authorization") != "Bearer "+s.apiToken {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "authorization, content-type")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		next.ServeHTTP(w, r)
	})
}

func preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStageError maps a pipeline failure onto its response. Anything
// that is not a tagged stage error is an internal fault.
func (s *Server) writeStageError(w http.ResponseWriter, err error) {
	var serr *pipeline.StageError
	if errors.As(err, &serr) {
		writeError(w, serr.HTTPStatus(), serr.Message())
		return
	}
	s.logger.Error("unclassified pipeline error", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal error")
}
