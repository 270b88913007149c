package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/superthinking/clarity/internal/openai"
)

// DefaultTitle is used when title generation fails or returns nothing.
const DefaultTitle = "Thinking Session"

// ParseError reports model output that could not be decoded into the
// expected structure. The raw payload is kept for diagnostics.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Analyzer turns transcripts into structured insight via the language
// model. It holds no per-request state.
type Analyzer struct {
	llm            *openai.Client
	analysisModel  string
	detectionModel string
	logger         *slog.Logger
}

func New(llm *openai.Client, analysisModel, detectionModel string, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		llm:            llm,
		analysisModel:  analysisModel,
		detectionModel: detectionModel,
		logger:         logger,
	}
}

// rawAnalysis mirrors the model's JSON with pointers on the numeric
// fields so an omitted value is distinguishable from an explicit zero.
type rawAnalysis struct {
	SummaryBefore      string             `json:"summary_before"`
	SummaryAfter       string             `json:"summary_after"`
	ProblemFocusPct    *int               `json:"problem_focus_percentage"`
	SolutionFocusPct   *int               `json:"solution_focus_percentage"`
	ShiftPct           *int               `json:"shift_percentage"`
	ThinkingStyle      string             `json:"thinking_style_today"`
	ThinkingPatterns   map[string]float64 `json:"thinking_patterns"`
	BestIdeas          []string           `json:"best_ideas"`
	StrengthHighlight  string             `json:"strength_highlight"`
	PositiveQuotes     []string           `json:"positive_quotes"`
	ResourcesMentioned []string           `json:"resources_mentioned"`
	DurationMinutes    *int               `json:"session_duration_minutes"`
	Actions            []ActionItem       `json:"actions"`
}

// AnalyzeSession runs the full-analysis prompt over a transcript and
// returns a defaulted, schema-checked result.
func (a *Analyzer) AnalyzeSession(ctx context.Context, transcript string, durationSeconds int) (*SessionAnalysis, error) {
	prompt := BuildAnalysisPrompt(transcript, durationSeconds)

	a.logger.Info("analyzing session transcript", "transcript_len", len(transcript), "duration_seconds", durationSeconds)

	raw, err := a.llm.Chat(ctx, a.analysisModel, []openai.Message{
		{Role: "system", Content: analysisSystemPrompt},
		{Role: "user", Content: prompt},
	}, openai.ChatOptions{})
	if err != nil {
		return nil, fmt.Errorf("analysis call: %w", err)
	}

	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		a.logger.Error("failed to parse analysis response", "error", err, "raw", raw)
		return nil, &ParseError{Raw: raw, Err: err}
	}

	result := &SessionAnalysis{
		SummaryBefore:      parsed.SummaryBefore,
		SummaryAfter:       parsed.SummaryAfter,
		ProblemFocusPct:    intOr(parsed.ProblemFocusPct, 50),
		SolutionFocusPct:   intOr(parsed.SolutionFocusPct, 50),
		ShiftPct:           intOr(parsed.ShiftPct, 0),
		ThinkingStyle:      parsed.ThinkingStyle,
		ThinkingPatterns:   parsed.ThinkingPatterns,
		BestIdeas:          parsed.BestIdeas,
		StrengthHighlight:  parsed.StrengthHighlight,
		PositiveQuotes:     parsed.PositiveQuotes,
		ResourcesMentioned: parsed.ResourcesMentioned,
		DurationMinutes:    intOr(parsed.DurationMinutes, DurationMinutes(durationSeconds)),
		Actions:            NormalizeActions(parsed.Actions, "ai_suggested"),
	}
	applyAnalysisDefaults(result)

	a.logger.Info("session analysis complete",
		"thinking_style", result.ThinkingStyle,
		"actions", len(result.Actions),
	)
	return result, nil
}

// GenerateTitle asks the model for a short session title. Failures are
// for the caller to absorb; the pipeline treats this stage as optional.
func (a *Analyzer) GenerateTitle(ctx context.Context, transcript string) (string, error) {
	raw, err := a.llm.Chat(ctx, a.analysisModel, []openai.Message{
		{Role: "system", Content: titleSystemPrompt},
		{Role: "user", Content: BuildTitlePrompt(transcript)},
	}, openai.ChatOptions{MaxTokens: 20})
	if err != nil {
		return "", fmt.Errorf("title call: %w", err)
	}

	title := strings.Trim(strings.TrimSpace(raw), `"'`)
	if title == "" {
		return "", fmt.Errorf("empty title")
	}
	return title, nil
}

// DetectPatterns scans a transcript for thinking patterns worth deeper
// exploration. The result is advisory and never persisted.
func (a *Analyzer) DetectPatterns(ctx context.Context, transcript string) (*PatternDetection, error) {
	temp := 0.3
	raw, err := a.llm.Chat(ctx, a.detectionModel, []openai.Message{
		{Role: "system", Content: detectionSystemPrompt},
		{Role: "user", Content: BuildDetectionPrompt(transcript)},
	}, openai.ChatOptions{Temperature: &temp, JSONMode: true})
	if err != nil {
		return nil, fmt.Errorf("detection call: %w", err)
	}

	var parsed PatternDetection
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		a.logger.Error("failed to parse detection response", "error", err, "raw", raw)
		return nil, &ParseError{Raw: raw, Err: err}
	}

	a.logger.Info("pattern detection complete", "has_patterns", parsed.HasPatterns)
	return &parsed, nil
}

// AnalyzeExploration runs the follow-up prompt over an exploration
// transcript and tone-normalizes the result to second person.
func (a *Analyzer) AnalyzeExploration(ctx context.Context, patternType, originalQuestion, explorationTranscript string) (*ExplorationAnalysis, error) {
	temp := 0.4
	raw, err := a.llm.Chat(ctx, a.detectionModel, []openai.Message{
		{Role: "system", Content: explorationSystemPrompt},
		{Role: "user", Content: BuildExplorationPrompt(patternType, originalQuestion, explorationTranscript)},
	}, openai.ChatOptions{Temperature: &temp, JSONMode: true})
	if err != nil {
		return nil, fmt.Errorf("exploration call: %w", err)
	}

	var parsed ExplorationAnalysis
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		a.logger.Error("failed to parse exploration response", "error", err, "raw", raw)
		return nil, &ParseError{Raw: raw, Err: err}
	}

	sanitizeExploration(&parsed)
	parsed.SuggestedActions = NormalizeActions(parsed.SuggestedActions, "deeper_exploration")

	a.logger.Info("exploration analysis complete", "pattern_type", patternType, "actions", len(parsed.SuggestedActions))
	return &parsed, nil
}

// NormalizeActions fills missing action fields so persistence never sees
// blanks where the schema expects a value. Items without a description
// are dropped.
func NormalizeActions(items []ActionItem, defaultSource string) []ActionItem {
	out := make([]ActionItem, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Description) == "" {
			continue
		}
		if it.Category == "" {
			it.Category = "next_step"
		}
		if it.Priority == "" {
			it.Priority = "medium"
		}
		if it.Source == "" || defaultSource == "deeper_exploration" {
			it.Source = defaultSource
		}
		out = append(out, it)
	}
	return out
}

func applyAnalysisDefaults(a *SessionAnalysis) {
	if a.ThinkingStyle == "" {
		a.ThinkingStyle = "reflective"
	}
	if a.ThinkingPatterns == nil {
		a.ThinkingPatterns = map[string]float64{}
	}
	if a.BestIdeas == nil {
		a.BestIdeas = []string{}
	}
	if a.PositiveQuotes == nil {
		a.PositiveQuotes = []string{}
	}
	if a.ResourcesMentioned == nil {
		a.ResourcesMentioned = []string{}
	}
}

func intOr(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}
