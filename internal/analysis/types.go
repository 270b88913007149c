package analysis

// SessionAnalysis is the structured insight derived from a full session
// transcript. Numeric and collection fields are always present after
// defaulting; persistence never sees nil here.
type SessionAnalysis struct {
	SummaryBefore      string             `json:"summary_before"`
	SummaryAfter       string             `json:"summary_after"`
	ProblemFocusPct    int                `json:"problem_focus_percentage"`
	SolutionFocusPct   int                `json:"solution_focus_percentage"`
	ShiftPct           int                `json:"shift_percentage"`
	ThinkingStyle      string             `json:"thinking_style_today"`
	ThinkingPatterns   map[string]float64 `json:"thinking_patterns"`
	BestIdeas          []string           `json:"best_ideas"`
	StrengthHighlight  string             `json:"strength_highlight"`
	PositiveQuotes     []string           `json:"positive_quotes"`
	ResourcesMentioned []string           `json:"resources_mentioned"`
	DurationMinutes    int                `json:"session_duration_minutes"`
	Actions            []ActionItem       `json:"actions"`
}

// ActionItem is a suggested next step derived from a session or an
// exploration. Status is assigned at insert time, not by the model.
type ActionItem struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"` // low | medium | high
	Source      string `json:"source"`   // user_stated | ai_suggested | deeper_exploration
}

// Pattern is one detected thinking pattern with its supporting evidence.
type Pattern struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Evidence    string `json:"evidence"`
}

// PatternDetection is the transient result of scanning a transcript.
// It is returned to the caller and never persisted.
type PatternDetection struct {
	HasPatterns      bool     `json:"has_patterns"`
	PrimaryPattern   *Pattern `json:"primary_pattern,omitempty"`
	FollowUpQuestion string   `json:"follow_up_question,omitempty"`
	InsightPreview   string   `json:"insight_preview,omitempty"`
}

// ExplorationAnalysis is the model's reading of a deeper-exploration
// response. All text fields are tone-normalized to second person before
// the struct leaves this package.
type ExplorationAnalysis struct {
	Insight          string       `json:"insight"`
	KeyRealization   string       `json:"key_realization"`
	SuggestedActions []ActionItem `json:"suggested_actions"`
	Encouragement    string       `json:"encouragement"`
}
