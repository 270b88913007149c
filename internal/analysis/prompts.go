package analysis

import (
	"fmt"
	"math"
)

const analysisSystemPrompt = `You are an expert at analyzing SuperThinking sessions - guided thinking sessions designed to help people transform overwhelm and overthinking into clarity and actionable insights. These sessions help users shift from problem-focused thinking to solution-focused thinking, identify their strengths, and create concrete next steps. Your analysis should be encouraging, insightful, and focused on the user's growth and positive transformation. Return only valid JSON that matches the requested structure.`

const analysisUserPrompt = `Analyze this thinking session transcript and return JSON with the following structure:

ANALYSIS INSTRUCTIONS:
- problem_focus_percentage: Calculate percentage of time spent on problems, worries, obstacles (0-100)
- solution_focus_percentage: Calculate percentage of time spent on solutions, actions, possibilities (0-100)
- shift_percentage: How much did thinking shift from problem to solution during session (0-100)
- thinking_style_today: Identify dominant thinking pattern from: "Vision Mapper" (future-focused, "what if"), "Strategic Connector" (logical, step-by-step), "Creative Explorer" (innovative, unconventional), "Reflective Processor" (deep, contemplative)
- actions: ALWAYS include 1-3 specific, concise next steps. Each must have description, category, priority (low|medium|high), source (user_stated|ai_suggested).

{
  "summary_before": "Brief summary of initial thoughts/problems",
  "summary_after": "Brief summary of insights/solutions found",
  "problem_focus_percentage": 0,
  "solution_focus_percentage": 0,
  "shift_percentage": 0,
  "thinking_style_today": "Vision Mapper|Strategic Connector|Creative Explorer|Reflective Processor",
  "thinking_patterns": {"overthinking": 0, "solution_focused": 0, "future_thinking": 0},
  "best_ideas": ["insight 1", "insight 2"],
  "strength_highlight": "key strength shown",
  "positive_quotes": ["motivating quote from transcript"],
  "resources_mentioned": ["resource 1", "resource 2"],
  "session_duration_minutes": %d,
  "actions": [
    {
      "description": "specific action to take",
      "category": "next_step",
      "priority": "high",
      "source": "user_stated"
    }
  ]
}

Transcript:
%s

Return only valid JSON:`

const titleSystemPrompt = `You generate insightful, contextual titles for SuperThinking sessions - guided thinking sessions where people work through challenges, overthinking, and problems. Create titles that capture the core topic, challenge, or breakthrough moment. Use 3-6 words that feel human and relatable. Examples: 'Overcoming Career Uncertainty', 'Managing Team Conflict', 'Finding Work-Life Balance', 'Processing Recent Breakup', 'Planning Major Life Change', 'Dealing with Imposter Syndrome'. Focus on the actual life situation or challenge, not generic terms.`

const titleUserPrompt = `Based on this thinking session transcript, generate a contextual title (3-6 words) that captures the main life challenge, topic, or breakthrough:

%s

Title:`

const detectionSystemPrompt = `You are an expert psychologist analyzing thinking patterns in SuperThinking sessions. Be precise and only flag patterns that would genuinely benefit from deeper exploration. Return only valid JSON.`

const detectionUserPrompt = `Analyze this thinking session transcript for psychological patterns and thinking styles that would benefit from deeper exploration.

Look for:
- Cognitive patterns (catastrophizing, all-or-nothing thinking, rumination, overthinking loops)
- Emotional patterns (anxiety spirals, self-doubt, imposter syndrome, avoidance)
- Behavioral patterns (procrastination triggers, decision paralysis, perfectionism)
- Language patterns (frequent use of "should/must", absolute terms, self-criticism)
- Thinking traps (people-pleasing, comparison, future worrying, past dwelling)

IMPORTANT: Only flag patterns that are:
1. Clear and evident in the transcript
2. Would genuinely benefit from deeper exploration
3. Not just normal human concerns

TONE: Write as if speaking directly to the person. Use "you" instead of "user" or "they". Be warm, empathetic, and conversational.

Return JSON with this exact structure:
{
  "has_patterns": true/false,
  "primary_pattern": {
    "type": "rumination|catastrophizing|perfectionism|avoidance|overthinking|self_doubt|people_pleasing|comparison|procrastination|decision_paralysis",
    "description": "Brief, empathetic description written directly to them (use 'you')",
    "evidence": "Direct quote from transcript that shows this pattern"
  },
  "follow_up_question": "One thoughtful, specific question addressed directly to them (under 20 words)",
  "insight_preview": "Brief preview of what exploring this could reveal for them (under 25 words)"
}

If no significant patterns detected, return has_patterns: false and omit other fields.

Transcript:
%s

Return only valid JSON:`

const explorationSystemPrompt = `You are an empathetic coach analyzing deeper self-exploration. Provide personalized insights and actionable steps based on what they shared. Be warm and encouraging.`

const explorationUserPrompt = `You are analyzing a deeper exploration response about a %s pattern.

The person was asked: "%s"

Their response: "%s"

Based on their deeper exploration, provide insights and actionable steps.

TONE: Write directly to them using "you". Be warm, empathetic, and encouraging.

CRITICAL STYLE RULES:
- Always write in second person (use "you", "your").
- Never refer to them as "user", "they", "them", or "their".
- The "key_realization" MUST start with "You" or "Your" and prefer past tense (e.g., "You acknowledged...").

Return JSON with this exact structure:
{
  "insight": "A thoughtful insight about what you discovered through their deeper exploration (2-3 sentences, personal tone)",
  "key_realization": "The main thing they seem to have realized or uncovered (1 sentence)",
  "suggested_actions": [
    {
      "description": "Specific, actionable step they could take based on their insights",
      "category": "next_step",
      "priority": "high|medium|low"
    }
  ],
  "encouragement": "Brief encouraging message about their self-awareness or growth (1-2 sentences)"
}

Focus on what THEY specifically shared and make it feel personal to their unique situation.

Return only valid JSON:`

// DurationMinutes converts a session length in seconds to the rounded
// minute count embedded in prompts and used as the defaulting fallback.
func DurationMinutes(durationSeconds int) int {
	return int(math.Round(float64(durationSeconds) / 60.0))
}

// BuildAnalysisPrompt interpolates the transcript and derived minute count
// into the full-analysis template. Pure, no I/O.
func BuildAnalysisPrompt(transcript string, durationSeconds int) string {
	return fmt.Sprintf(analysisUserPrompt, DurationMinutes(durationSeconds), transcript)
}

// BuildTitlePrompt interpolates the transcript into the title template.
func BuildTitlePrompt(transcript string) string {
	return fmt.Sprintf(titleUserPrompt, transcript)
}

// BuildDetectionPrompt interpolates the transcript into the pattern
// detection template.
func BuildDetectionPrompt(transcript string) string {
	return fmt.Sprintf(detectionUserPrompt, transcript)
}

// BuildExplorationPrompt interpolates the pattern context and the
// exploration transcript into the follow-up analysis template.
func BuildExplorationPrompt(patternType, originalQuestion, explorationTranscript string) string {
	return fmt.Sprintf(explorationUserPrompt, patternType, originalQuestion, explorationTranscript)
}
