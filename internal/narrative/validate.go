// internal/narrative/validate.go
package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/config"
	apperrors "github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/errors"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/llm"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/models"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/store"
)

// Score thresholds for repair routing. A scene is valid only when it clears
// the accept threshold AND passes at least minPassedChecks of the seven
// checks, so one heavily weighted check can never carry a broken scene.
const (
	acceptThreshold  = 85
	partialThreshold = 60
	rewriteThreshold = 40
	minPassedChecks  = 6
)

// Validator is the validate phase: it scores a written scene against its
// intent and routes it to accept, partial repair, rewrite, or reject.
type Validator struct {
	store    store.Store
	provider llm.Provider
	tuning   config.NarrativeTuning
}

func NewValidator(st store.Store, provider llm.Provider, tuning config.NarrativeTuning) *Validator {
	return &Validator{store: st, provider: provider, tuning: tuning}
}

type ValidateRequest struct {
	ProjectID string
	SceneID   string
}

type ValidateResult struct {
	SceneID        string                  `json:"scene_id"`
	Score          int                     `json:"score"`
	PassedCount    int                     `json:"passed_count"`
	Valid          bool                    `json:"valid"`
	RepairStrategy string                  `json:"repair_strategy"`
	Checks         models.ValidationChecks `json:"checks"`
	DurationMS     int64                   `json:"duration_ms"`
}

// Validate runs the seven-check rubric for one scene. The model judges each
// check pass or fail; scoring and routing are computed here, never delegated.
func (v *Validator) Validate(ctx context.Context, req ValidateRequest) (*ValidateResult, error) {
	started := time.Now()

	scene, err := v.store.GetScene(ctx, req.SceneID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("scene %s not found", req.SceneID), nil)
		}
		return nil, apperrors.NewProcessingError("loading scene", err)
	}

	intent, err := v.store.GetIntent(ctx, scene.ProjectID, scene.EpisodeNumber, scene.SceneNumber)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("scene %d has no planning intent to validate against", scene.SceneNumber), nil)
		}
		return nil, apperrors.NewProcessingError("loading scene intent", err)
	}

	state, err := v.store.GetNarrativeState(ctx, scene.ProjectID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NewNotFoundError(
				fmt.Sprintf("no narrative state for project %s", scene.ProjectID), nil)
		}
		return nil, apperrors.NewProcessingError("loading narrative state", err)
	}

	checks, model, tokens, err := v.judgeScene(ctx, scene, intent, state)
	if err != nil {
		v.logRun(ctx, scene.ProjectID, model, tokens, time.Since(started), "failed", err.Error())
		return nil, err
	}

	result := ScoreChecks(*checks, v.tuning.Rubric)

	if err := v.applyOutcome(ctx, scene, intent, state, result); err != nil {
		return nil, err
	}

	v.logRun(ctx, scene.ProjectID, model, tokens, time.Since(started), "ok",
		fmt.Sprintf("scene %d scored %d (%s)", scene.SceneNumber, result.Score, result.RepairStrategy))

	return &ValidateResult{
		SceneID:        scene.ID,
		Score:          result.Score,
		PassedCount:    result.PassedCount,
		Valid:          result.Valid,
		RepairStrategy: result.RepairStrategy,
		Checks:         result.Checks,
		DurationMS:     time.Since(started).Milliseconds(),
	}, nil
}

// ScoreChecks computes the score and repair routing for a set of judged
// checks. The score is the sum of the weights of passed checks.
func ScoreChecks(checks models.ValidationChecks, weights config.RubricWeights) models.ValidationResult {
	score := 0
	passed := 0
	for _, check := range checks.All() {
		if check.Result.Passed {
			score += weightFor(check.Name, weights)
			passed++
		}
	}

	var strategy string
	switch {
	case score >= acceptThreshold:
		strategy = models.RepairAccept
	case score >= partialThreshold:
		strategy = models.RepairPartial
	case score >= rewriteThreshold:
		strategy = models.RepairRewrite
	default:
		strategy = models.RepairReject
	}

	return models.ValidationResult{
		Checks:         checks,
		Score:          score,
		PassedCount:    passed,
		Valid:          score >= acceptThreshold && passed >= minPassedChecks,
		RepairStrategy: strategy,
	}
}

func weightFor(name string, w config.RubricWeights) int {
	switch name {
	case "intent_fulfilled":
		return w.IntentFulfilled
	case "forbidden_respected":
		return w.ForbiddenRespected
	case "thread_advanced":
		return w.ThreadAdvanced
	case "no_premature_closure":
		return w.NoPrematureClosure
	case "tone_coherent":
		return w.ToneCoherent
	case "no_repetition":
		return w.NoRepetition
	case "emotional_progression":
		return w.EmotionalProgression
	}
	return 0
}

func (v *Validator) judgeScene(ctx context.Context, scene *models.WrittenScene, intent *models.SceneIntent, state *models.NarrativeState) (*models.ValidationChecks, string, int, error) {
	model := v.tuning.SmallBatchModel

	resp, err := v.provider.CompleteText(ctx, llm.CompletionRequest{
		Prompt:       buildValidationPrompt(scene, intent, state),
		SystemPrompt: validatorSystemPrompt,
		Model:        model,
		Temperature:  0.2,
		MaxTokens:    v.tuning.MaxTokens,
		JSONMode:     true,
	})
	if err != nil {
		return nil, model, 0, err
	}
	if resp.FinishReason == "length" {
		return nil, model, resp.TokensUsed, apperrors.NewUpstreamError(
			fmt.Sprintf("validator response truncated for scene %d", scene.SceneNumber), nil)
	}

	var checks models.ValidationChecks
	if err := json.Unmarshal([]byte(llm.CleanJSONResponse(resp.Text)), &checks); err != nil {
		return nil, model, resp.TokensUsed, apperrors.NewUpstreamError(
			fmt.Sprintf("validator returned invalid JSON for scene %d", scene.SceneNumber), err)
	}
	return &checks, model, resp.TokensUsed, nil
}

// applyOutcome persists the routing decision: scene row, intent status, a
// repair row when one is warranted, and the narrative summary on acceptance.
func (v *Validator) applyOutcome(ctx context.Context, scene *models.WrittenScene, intent *models.SceneIntent, state *models.NarrativeState, result models.ValidationResult) error {
	var sceneStatus, intentStatus string
	switch result.RepairStrategy {
	case models.RepairAccept:
		sceneStatus = "validated"
		intentStatus = models.IntentStatusValidated
	case models.RepairPartial, models.RepairRewrite:
		sceneStatus = "needs_repair"
		intentStatus = models.IntentStatusNeedsRepair
	default:
		sceneStatus = "rejected"
		intentStatus = models.IntentStatusRejected
	}

	if err := v.store.UpdateSceneValidation(ctx, scene.ID, result.Score, sceneStatus, result.Checks); err != nil {
		return apperrors.NewProcessingError("recording validation outcome", err)
	}
	if err := v.store.UpdateIntentStatus(ctx, intent.ID, intentStatus); err != nil {
		return apperrors.NewProcessingError("updating intent status", err)
	}

	if result.RepairStrategy == models.RepairPartial || result.RepairStrategy == models.RepairRewrite {
		var failed, reasons []string
		for _, check := range result.Checks.All() {
			if !check.Result.Passed {
				failed = append(failed, check.Name)
				if check.Result.Reason != "" {
					reasons = append(reasons, check.Result.Reason)
				}
			}
		}
		repair := &models.SceneRepair{
			ID:           uuid.NewString(),
			SceneID:      scene.ID,
			IntentID:     intent.ID,
			Strategy:     result.RepairStrategy,
			FailedChecks: failed,
			Reasons:      reasons,
		}
		if err := v.store.CreateSceneRepair(ctx, repair); err != nil {
			return apperrors.NewProcessingError("creating scene repair", err)
		}
	}

	if result.RepairStrategy == models.RepairAccept {
		state.LastUnitSummary = intent.IntentSummary
		if err := v.store.UpdateNarrativeState(ctx, state); err != nil {
			return apperrors.NewProcessingError("updating narrative state", err)
		}
	}
	return nil
}

func (v *Validator) logRun(ctx context.Context, projectID, model string, tokens int, elapsed time.Duration, outcome, detail string) {
	entry := &models.GenerationRunLog{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		Operation:  "narrative_validate",
		Model:      model,
		TokensUsed: tokens,
		DurationMS: elapsed.Milliseconds(),
		Outcome:    outcome,
		Detail:     detail,
	}
	if err := v.store.InsertRunLog(ctx, entry); err != nil {
		log.Printf("narrative: failed to write run log: %v", err)
	}
}
