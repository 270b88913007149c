package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/superthinking/clarity/internal/analysis"
	"github.com/superthinking/clarity/internal/events"
	"github.com/superthinking/clarity/internal/store"
)

// AudioFetcher retrieves the raw bytes of an audio resource.
type AudioFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Transcriber turns audio bytes into text.
type Transcriber interface {
	Transcribe(ctx context.Context, model, filename string, audio []byte) (string, error)
}

// Analyzer is the model-facing analysis surface.
type Analyzer interface {
	AnalyzeSession(ctx context.Context, transcript string, durationSeconds int) (*analysis.SessionAnalysis, error)
	GenerateTitle(ctx context.Context, transcript string) (string, error)
	DetectPatterns(ctx context.Context, transcript string) (*analysis.PatternDetection, error)
	AnalyzeExploration(ctx context.Context, patternType, originalQuestion, explorationTranscript string) (*analysis.ExplorationAnalysis, error)
}

// Publisher is the optional event bus.
type Publisher interface {
	Publish(subject string, data any) error
}

// FailureAlerter is the optional ops alert channel.
type FailureAlerter interface {
	PostFailure(ctx context.Context, sessionID, stage, errMsg string) error
}

// Processor orchestrates the session analysis pipeline. Every invocation
// is stateless and strictly sequential: no stage starts before the
// previous stage's result is in hand, and no stage is retried.
type Processor struct {
	store           store.SessionStore
	fetcher         AudioFetcher
	transcriber     Transcriber
	analyzer        Analyzer
	bus             Publisher
	alerter         FailureAlerter
	transcribeModel string
	logger          *slog.Logger
}

func New(s store.SessionStore, f AudioFetcher, t Transcriber, a Analyzer, transcribeModel string, logger *slog.Logger) *Processor {
	return &Processor{
		store:           s,
		fetcher:         f,
		transcriber:     t,
		analyzer:        a,
		transcribeModel: transcribeModel,
		logger:          logger,
	}
}

// WithBus attaches an event bus for processed-session announcements.
func (p *Processor) WithBus(bus Publisher) *Processor {
	p.bus = bus
	return p
}

// WithAlerter attaches an ops alerter for pipeline failures.
func (p *Processor) WithAlerter(a FailureAlerter) *Processor {
	p.alerter = a
	return p
}

// ProcessSession runs the full analysis pipeline for one session:
// load, fetch audio, transcribe, title, analyze, persist. Any mandatory
// stage failure past the load step marks the session failed
// (best-effort) and surfaces a stage-tagged error.
func (p *Processor) ProcessSession(ctx context.Context, sessionID uuid.UUID) error {
	log := p.logger.With("session_id", sessionID)
	log.Info("processing session")

	sess, err := p.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return stageErr(StageLoadSession, KindNotFound, err)
		}
		return stageErr(StageLoadSession, KindPersistence, err)
	}

	if sess.AudioURL == "" {
		return stageErrReason(StageLoadSession, KindInvalidState, "No audio_url on session",
			errors.New("no audio_url on session"))
	}
	if !sess.ProcessingStatus.CanTransition(store.StatusCompleted) {
		return stageErrReason(StageLoadSession, KindInvalidState, "Session cannot be processed in its current state",
			errors.New("session status "+string(sess.ProcessingStatus)+" cannot be processed"))
	}

	audio, err := p.fetcher.Fetch(ctx, sess.AudioURL)
	if err != nil {
		return p.fail(ctx, sessionID, stageErr(StageFetchAudio, KindUpstreamFetch, err))
	}
	log.Info("audio fetched", "bytes", len(audio))

	transcript, err := p.transcriber.Transcribe(ctx, p.transcribeModel, "audio.m4a", audio)
	if err != nil {
		return p.fail(ctx, sessionID, stageErr(StageTranscribe, KindTranscription, err))
	}
	log.Info("transcription complete", "transcript_len", len(transcript))

	// Title generation is the one optional stage: degrade, never fail.
	title, err := p.analyzer.GenerateTitle(ctx, transcript)
	if err != nil {
		log.Warn("title generation failed, using fallback", "error", err)
		title = analysis.DefaultTitle
	}

	result, err := p.analyzer.AnalyzeSession(ctx, transcript, sess.DurationSeconds)
	if err != nil {
		return p.fail(ctx, sessionID, stageErr(StageAnalyze, analysisKind(err), err))
	}

	if err := p.store.CompleteSession(ctx, sessionID, transcript, title); err != nil {
		return p.fail(ctx, sessionID, stageErr(StagePersist, KindPersistence, err))
	}
	if err := p.store.UpsertAnalysis(ctx, sessionID, analysisRow(result)); err != nil {
		return p.fail(ctx, sessionID, stageErr(StagePersist, KindPersistence, err))
	}

	// Action items are best-effort enrichment: a failed batch is logged
	// but the run still succeeds, since the analysis row is the source
	// of truth.
	items := actionRows(result.Actions)
	if err := p.store.InsertActionItems(ctx, sessionID, items); err != nil {
		log.Error("action items insert failed", "error", err, "count", len(items))
	}

	if p.bus != nil {
		if err := p.bus.Publish(events.SubjectSessionProcessed, events.SessionProcessed{
			SessionID:   sessionID.String(),
			UserID:      sess.UserID.String(),
			Title:       title,
			ActionItems: len(items),
		}); err != nil {
			log.Warn("failed to publish session processed event", "error", err)
		}
	}

	log.Info("session processed", "title", title, "actions", len(items))
	return nil
}

// DetectPatterns scans a session's stored transcript for thinking
// patterns. It is a side-effect-free read: nothing is persisted and an
// empty transcript yields a neutral result without a model call.
func (p *Processor) DetectPatterns(ctx context.Context, sessionID uuid.UUID) (*analysis.PatternDetection, error) {
	sess, err := p.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, stageErr(StageLoadSession, KindNotFound, err)
		}
		return nil, stageErr(StageLoadSession, KindPersistence, err)
	}

	if strings.TrimSpace(sess.RawTranscript) == "" {
		p.logger.Info("no transcript, skipping pattern detection", "session_id", sessionID)
		return &analysis.PatternDetection{HasPatterns: false}, nil
	}

	result, err := p.analyzer.DetectPatterns(ctx, sess.RawTranscript)
	if err != nil {
		return nil, stageErr(StageAnalyze, analysisKind(err), err)
	}
	return result, nil
}

// ExplorationRequest carries the inputs of a pattern-exploration run.
type ExplorationRequest struct {
	SessionID        uuid.UUID
	AudioURL         string
	PatternType      string
	OriginalQuestion string
}

// ExplorationResult is the joint outcome of an exploration run. The two
// persistence writes are independent best-effort operations; Primary and
// Secondary expose their individual outcomes so callers and tests can
// observe partial success instead of it vanishing into logs.
type ExplorationResult struct {
	Transcript string
	Analysis   *analysis.ExplorationAnalysis
	InsightID  uuid.UUID // zero when the insight insert failed
	Primary    error     // insight row insert
	Secondary  error     // action item batch insert
}

// ExplorePattern processes a follow-up audio response to a detected
// pattern: fetch, transcribe, analyze with the pattern context, then
// insert the insight row and the action batch independently.
func (p *Processor) ExplorePattern(ctx context.Context, req ExplorationRequest) (*ExplorationResult, error) {
	log := p.logger.With("session_id", req.SessionID, "pattern_type", req.PatternType)
	log.Info("processing pattern exploration")

	audio, err := p.fetcher.Fetch(ctx, req.AudioURL)
	if err != nil {
		return nil, stageErr(StageFetchAudio, KindUpstreamFetch, err)
	}

	transcript, err := p.transcriber.Transcribe(ctx, p.transcribeModel, "exploration.m4a", audio)
	if err != nil {
		return nil, stageErr(StageTranscribe, KindTranscription, err)
	}
	log.Info("exploration transcribed", "transcript_len", len(transcript))

	result, err := p.analyzer.AnalyzeExploration(ctx, req.PatternType, req.OriginalQuestion, transcript)
	if err != nil {
		return nil, stageErr(StageAnalyze, analysisKind(err), err)
	}

	out := &ExplorationResult{Transcript: transcript, Analysis: result}

	out.InsightID, out.Primary = p.store.InsertExploration(ctx, store.ExplorationRow{
		SessionID:             req.SessionID,
		PatternType:           req.PatternType,
		OriginalQuestion:      req.OriginalQuestion,
		ExplorationTranscript: transcript,
		Insight:               result.Insight,
		KeyRealization:        result.KeyRealization,
		Encouragement:         result.Encouragement,
		AudioURL:              req.AudioURL,
	})
	if out.Primary != nil {
		log.Error("exploration insight insert failed", "error", out.Primary)
	}

	out.Secondary = p.store.InsertActionItems(ctx, req.SessionID, actionRows(result.SuggestedActions))
	if out.Secondary != nil {
		log.Error("exploration action items insert failed", "error", out.Secondary)
	}

	log.Info("pattern exploration processed", "actions", len(result.SuggestedActions))
	return out, nil
}

// fail marks the session failed before surfacing the stage error. The
// status write is best-effort: its own failure is logged, never allowed
// to mask the original error.
func (p *Processor) fail(ctx context.Context, sessionID uuid.UUID, serr *StageError) error {
	if err := p.store.MarkSessionFailed(ctx, sessionID); err != nil {
		p.logger.Error("failed to mark session failed", "session_id", sessionID, "error", err)
	}
	if p.alerter != nil {
		if err := p.alerter.PostFailure(ctx, sessionID.String(), string(serr.Stage), serr.Err.Error()); err != nil {
			p.logger.Warn("failure alert not delivered", "error", err)
		}
	}
	p.logger.Error("pipeline stage failed", "session_id", sessionID, "stage", serr.Stage, "error", serr.Err)
	return serr
}

// analysisKind separates schema violations from transport-level model
// failures.
func analysisKind(err error) Kind {
	var pe *analysis.ParseError
	if errors.As(err, &pe) {
		return KindAnalysisParse
	}
	return KindModelInvocation
}

func analysisRow(a *analysis.SessionAnalysis) store.AnalysisRow {
	return store.AnalysisRow{
		SummaryBefore:      a.SummaryBefore,
		SummaryAfter:       a.SummaryAfter,
		ProblemFocusPct:    a.ProblemFocusPct,
		SolutionFocusPct:   a.SolutionFocusPct,
		ShiftPct:           a.ShiftPct,
		ThinkingStyle:      a.ThinkingStyle,
		ThinkingPatterns:   a.ThinkingPatterns,
		BestIdeas:          a.BestIdeas,
		StrengthHighlight:  a.StrengthHighlight,
		PositiveQuotes:     a.PositiveQuotes,
		ResourcesMentioned: a.ResourcesMentioned,
		DurationMinutes:    a.DurationMinutes,
	}
}

func actionRows(items []analysis.ActionItem) []store.ActionItemRow {
	rows := make([]store.ActionItemRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, store.ActionItemRow{
			Description: it.Description,
			Category:    it.Category,
			Priority:    it.Priority,
			Source:      it.Source,
		})
	}
	return rows
}
