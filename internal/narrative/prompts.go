// internal/narrative/prompts.go
package narrative

import (
	"fmt"
	"strings"

	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/models"
)

const plannerSystemPrompt = `You are a story architect planning television and film scenes as structured intents, not prose.
You must output only valid JSON matching the requested schema. No explanations, no markdown, no extra keys.`

const validatorSystemPrompt = `You are a script supervisor evaluating a written scene against its planning intent.
You must output only valid JSON matching the requested schema. No explanations, no markdown, no extra keys.`

// batchPlan is the expected planner response for one batch.
type batchPlan struct {
	Scenes       []plannedScene `json:"scenes"`
	BatchSummary string         `json:"batch_summary"`
	NextGoal     string         `json:"next_narrative_goal"`
}

type plannedScene struct {
	SceneNumber         int      `json:"scene_number"`
	IntentSummary       string   `json:"intent_summary"`
	EmotionalTurn       string   `json:"emotional_turn"`
	InformationRevealed []string `json:"information_revealed"`
	InformationHidden   []string `json:"information_hidden"`
	CharactersInvolved  []string `json:"characters_involved"`
	ThreadToAdvance     string   `json:"thread_to_advance"`
	Constraints         string   `json:"constraints"`
}

// buildBatchPrompt assembles the planning prompt for one batch of scenes.
// The previous batch summary rides along for continuity.
func buildBatchPrompt(state *models.NarrativeState, threads, characters []string, outlineSummary string, firstScene, lastScene int, prevSummary string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Plan scenes %d through %d of this story as structured scene intents.\n\n", firstScene, lastScene)

	fmt.Fprintf(&b, "NARRATIVE STATE\nPhase: %s\nGoal: %s\nScenes generated so far: %d\n\n",
		state.CurrentPhase, orUnset(state.NarrativeGoal), state.ScenesGenerated)

	writeList(&b, "LOCKED FACTS (scenes must never contradict these)", state.LockedFacts)
	writeList(&b, "FORBIDDEN ACTIONS (must not happen yet)", state.ForbiddenActions)
	writeList(&b, "AVAILABLE THREADS", threads)
	writeList(&b, "CHARACTERS", characters)

	if outlineSummary != "" {
		fmt.Fprintf(&b, "OUTLINE\n%s\n\n", outlineSummary)
	}
	if prevSummary != "" {
		fmt.Fprintf(&b, "PREVIOUS BATCH SUMMARY (for continuity)\n%s\n\n", prevSummary)
	}

	b.WriteString(`Return JSON with this exact shape:
{
  "scenes": [
    {
      "scene_number": <int>,
      "intent_summary": "<what the scene must accomplish dramatically>",
      "emotional_turn": "<the emotional shift from start to end>",
      "information_revealed": ["<fact made known>"],
      "information_hidden": ["<fact deliberately withheld>"],
      "characters_involved": ["<name>"],
      "thread_to_advance": "<thread name>",
      "constraints": "<hard constraints for the writer>"
    }
  ],
  "batch_summary": "<2-3 sentence summary of this batch>",
  "next_narrative_goal": "<the goal after these scenes>"
}`)

	return b.String()
}

// buildValidationPrompt asks the model to evaluate the seven rubric checks.
// Scoring and routing stay deterministic on our side; the model only judges
// pass/fail per check.
func buildValidationPrompt(scene *models.WrittenScene, intent *models.SceneIntent, state *models.NarrativeState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Evaluate the written scene below against its planning intent.\n\n")

	fmt.Fprintf(&b, "INTENT\nSummary: %s\nEmotional turn: %s\nThread to advance: %s\nConstraints: %s\n",
		intent.IntentSummary, intent.EmotionalTurn, intent.ThreadToAdvance, orUnset(intent.Constraints))
	writeList(&b, "Information to reveal", intent.InformationRevealed)
	writeList(&b, "Information to keep hidden", intent.InformationHidden)
	writeList(&b, "Characters involved", intent.CharactersInvolved)

	writeList(&b, "LOCKED FACTS", state.LockedFacts)
	writeList(&b, "FORBIDDEN ACTIONS (any violation fails forbidden_respected)", state.ForbiddenActions)
	if state.LastUnitSummary != "" {
		fmt.Fprintf(&b, "PREVIOUS UNIT SUMMARY (for the repetition check)\n%s\n\n", state.LastUnitSummary)
	}

	fmt.Fprintf(&b, "SCENE %d\n%s\n\n", scene.SceneNumber, scene.Content)

	b.WriteString(`Judge each check strictly. emotional_progression passes only if characters end in a measurably different emotional state than they started. no_premature_closure fails if any thread is resolved before its narratively appropriate time.

Return JSON with this exact shape:
{
  "intent_fulfilled": {"passed": <bool>, "reason": "<why>"},
  "forbidden_respected": {"passed": <bool>, "reason": "<why>"},
  "thread_advanced": {"passed": <bool>, "reason": "<why>"},
  "no_premature_closure": {"passed": <bool>, "reason": "<why>"},
  "tone_coherent": {"passed": <bool>, "reason": "<why>"},
  "no_repetition": {"passed": <bool>, "reason": "<why>"},
  "emotional_progression": {"passed": <bool>, "reason": "<why>"}
}`)

	return b.String()
}

// summarizeOutline flattens a few top-level outline fields for the prompt.
func summarizeOutline(outline map[string]any) string {
	if outline == nil {
		return ""
	}
	var parts []string
	for _, key := range []string{"logline", "synopsis", "premise", "summary"} {
		if s, _ := outline[key].(string); strings.TrimSpace(s) != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	return strings.Join(parts, "\n")
}

func writeList(b *strings.Builder, header string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(header + "\n")
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
	b.WriteString("\n")
}

func orUnset(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not set)"
	}
	return s
}
