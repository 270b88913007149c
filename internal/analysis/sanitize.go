package analysis

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reTheUser = regexp.MustCompile(`\b[Tt]he user\b`)
	reThey    = regexp.MustCompile(`(?i)\bthey\b`)
	reTheir   = regexp.MustCompile(`(?i)\btheir\b`)
	reThem    = regexp.MustCompile(`(?i)\bthem\b`)
	reYouLead = regexp.MustCompile(`^\s*(You|Your)\b`)
)

// SanitizeSecondPerson rewrites third-person references to the speaker
// into second person. Runs unconditionally on exploration output so the
// voice stays consistent regardless of model drift; already-compliant
// text passes through unchanged.
func SanitizeSecondPerson(text string) string {
	out := reTheUser.ReplaceAllString(text, "you")
	out = reThey.ReplaceAllString(out, "you")
	out = reTheir.ReplaceAllString(out, "your")
	out = reThem.ReplaceAllString(out, "you")
	return strings.TrimSpace(out)
}

// EnsureSecondPersonLead forces a key realization to open with "You" or
// "Your", prepending "You " and lower-casing the original first rune when
// it does not.
func EnsureSecondPersonLead(text string) string {
	if text == "" || reYouLead.MatchString(text) {
		return text
	}
	runes := []rune(text)
	runes[0] = unicode.ToLower(runes[0])
	return "You " + string(runes)
}

// sanitizeExploration applies the full tone-normalization pass to every
// user-visible text field of an exploration analysis.
func sanitizeExploration(a *ExplorationAnalysis) {
	a.Insight = SanitizeSecondPerson(a.Insight)
	a.KeyRealization = EnsureSecondPersonLead(SanitizeSecondPerson(a.KeyRealization))
	a.Encouragement = SanitizeSecondPerson(a.Encouragement)
}
