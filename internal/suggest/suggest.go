package suggest

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/superthinking/clarity/internal/openai"
)

const recentWindowChars = 1000

const systemPrompt = `You are a warm, neutral, non-judgmental thinking partner in a SuperThinking session.
Your job is to provide gentle, context-aware nudges that help users reflect, clarify, and move forward.

Make the prompts feel personal and grounded in what the user actually said:
- Quote or paraphrase exact phrases when helpful: "you said '...'".
- Name concrete nouns from their context (people, docs, dates): "Sam", "Q3 report", "Friday".
- Prefer short, time-boxed steps: "10 minutes", "today", "this week".
- One idea per prompt; neutral, curious, and non-judgmental.
- Avoid therapy language, diagnoses, or moralizing. Avoid generic advice.

Format rules:
- Each suggestion must be 12-80 characters.
- Return ONLY JSON of the form {"suggestions": ["...", "..."]} with 1-3 items.`

var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// Generator produces live in-session nudges. It never fails a request:
// any internal error degrades to a synthesized fallback suggestion.
type Generator struct {
	llm    *openai.Client
	model  string
	logger *slog.Logger
}

func New(llm *openai.Client, model string, logger *slog.Logger) *Generator {
	return &Generator{llm: llm, model: model, logger: logger}
}

// Suggest returns 1-3 short prompts for the recent transcript window.
// An empty transcript yields an empty list; everything else always
// produces at least one suggestion.
func (g *Generator) Suggest(ctx context.Context, transcript string) []string {
	trimmed := strings.TrimSpace(transcript)
	if trimmed == "" {
		return []string{}
	}

	recent := trimmed
	if len(recent) > recentWindowChars {
		cut := len(recent) - recentWindowChars
		// Keep the slice on a rune boundary.
		for cut < len(recent) && !utf8.RuneStart(recent[cut]) {
			cut++
		}
		recent = recent[cut:]
	}

	suggestions := g.fromModel(ctx, recent)
	if len(suggestions) == 0 {
		suggestions = []string{fallbackPrompt(recent)}
	}
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

func (g *Generator) fromModel(ctx context.Context, recent string) []string {
	temp := 0.2
	user := "Recent transcript window (may be messy):\n\n" + recent + "\n\nGenerate 1-3 subtle, personal prompts following the rules."

	raw, err := g.llm.Chat(ctx, g.model, []openai.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: user},
	}, openai.ChatOptions{Temperature: &temp, MaxTokens: 90, JSONMode: true})
	if err != nil {
		g.logger.Warn("suggestion call failed", "error", err)
		return nil
	}

	var parsed struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil && len(parsed.Suggestions) > 0 {
		return cleanList(parsed.Suggestions)
	}

	// Salvage: the model sometimes ignores the format and returns lines.
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "{") {
			out = append(out, line)
		}
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// fallbackPrompt synthesizes one compact prompt from the last sentence of
// the window so the caller always gets something to show.
func fallbackPrompt(recent string) string {
	parts := sentenceEnd.Split(recent, -1)
	last := strings.TrimSpace(parts[len(parts)-1])
	if last == "" {
		last = strings.TrimSpace(recent)
	}
	if last == "" {
		return "What feels like the next 10-min step?"
	}

	compact := last
	if len(compact) > 80 {
		cut := 77
		for cut > 0 && !utf8.RuneStart(compact[cut]) {
			cut--
		}
		compact = compact[:cut] + "..."
	}
	if strings.HasSuffix(compact, "?") {
		return compact
	}
	return `You said: "` + compact + `" - what feels like the next 10-min step?`
}
