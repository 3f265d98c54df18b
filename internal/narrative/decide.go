// internal/narrative/decide.go
package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/config"
	apperrors "github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/errors"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/llm"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/models"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/store"
)

// JobNotifier receives job lifecycle events; the websocket hub implements it.
type JobNotifier interface {
	NotifyJobs(projectID string, jobs []models.Job)
}

// Planner is the decide phase: it turns an outline into batches of scene
// intents plus queued generation jobs.
type Planner struct {
	store    store.Store
	provider llm.Provider
	tuning   config.NarrativeTuning
	limiter  *rate.Limiter
	notifier JobNotifier
}

func NewPlanner(st store.Store, provider llm.Provider, tuning config.NarrativeTuning, notifier JobNotifier) *Planner {
	interval := tuning.BatchInterval.Std()
	if interval <= 0 {
		interval = time.Second
	}
	return &Planner{
		store:    st,
		provider: provider,
		tuning:   tuning,
		// One planning call per interval keeps the gateway rate limiter happy.
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		notifier: notifier,
	}
}

type DecideRequest struct {
	ProjectID     string
	EpisodeNumber int
	ScenesToPlan  int
	// Outline optionally carries the outline inline; when nil the stored
	// outline for the episode is used.
	Outline map[string]any
}

type DecideResult struct {
	ScenesPlanned       int      `json:"scenes_planned"`
	NextNarrativeGoal   string   `json:"next_narrative_goal"`
	ActiveThreads       []string `json:"active_threads"`
	JobsCreated         int      `json:"jobs_created"`
	JobIDs              []string `json:"job_ids"`
	NarrativeStateID    string   `json:"narrative_state_id"`
	ReusingExistingJobs bool     `json:"reusing_existing_jobs"`
	DurationMS          int64    `json:"duration_ms"`
}

// Decide plans the requested number of scenes in fixed-size batches. A
// malformed or truncated model response aborts the current batch with an
// error; batches already committed in the same call are retained.
func (p *Planner) Decide(ctx context.Context, req DecideRequest) (*DecideResult, error) {
	started := time.Now()

	if req.ScenesToPlan <= 0 {
		req.ScenesToPlan = p.tuning.BatchSize
	}

	state, err := p.loadOrCreateState(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	// Idempotent resume: queued generation jobs mean a previous decide call
	// already planned this work.
	queued, err := p.store.QueuedJobs(ctx, req.ProjectID, models.JobTypeSceneGeneration)
	if err != nil {
		return nil, apperrors.NewProcessingError("checking queued jobs", err)
	}
	if len(queued) > 0 {
		ids := make([]string, 0, len(queued))
		for _, j := range queued {
			ids = append(ids, j.ID)
		}
		return &DecideResult{
			NextNarrativeGoal:   state.NarrativeGoal,
			ActiveThreads:       state.ActiveThreads,
			JobsCreated:         len(queued),
			JobIDs:              ids,
			NarrativeStateID:    state.ID,
			ReusingExistingJobs: true,
			DurationMS:          time.Since(started).Milliseconds(),
		}, nil
	}

	outline, err := p.resolveOutline(ctx, req)
	if err != nil {
		return nil, err
	}

	threads := ExtractThreads(outline)
	characters := ExtractCharacters(outline)
	outlineSummary := summarizeOutline(outline)

	planned, err := p.store.PlannedSceneNumbers(ctx, req.ProjectID, req.EpisodeNumber)
	if err != nil {
		return nil, apperrors.NewProcessingError("listing planned scenes", err)
	}

	firstScene := state.ScenesGenerated + 1
	result := &DecideResult{NarrativeStateID: state.ID}
	prevSummary := state.LastUnitSummary

	remaining := req.ScenesToPlan
	sceneCursor := firstScene
	for remaining > 0 {
		batch := remaining
		if batch > p.tuning.BatchSize {
			batch = p.tuning.BatchSize
		}

		// Throttle between gateway calls; this is serialization, not
		// parallelism.
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, apperrors.NewProcessingError("waiting for rate limiter", err)
		}

		plan, model, tokens, err := p.planBatch(ctx, state, threads, characters, outlineSummary, sceneCursor, sceneCursor+batch-1, prevSummary)
		if err != nil {
			p.logRun(ctx, req.ProjectID, model, tokens, time.Since(started), "failed", err.Error())
			return nil, err
		}

		intents, jobs := p.buildBatchRows(req, plan, planned)
		insertedIntents, insertedJobs, err := p.store.InsertIntentsWithJobs(ctx, intents, jobs)
		if err != nil {
			return nil, apperrors.NewProcessingError("persisting planned batch", err)
		}

		for _, intent := range insertedIntents {
			planned[intent.SceneNumber] = true
		}
		result.ScenesPlanned += len(insertedIntents)
		result.JobsCreated += len(insertedJobs)
		for _, j := range insertedJobs {
			result.JobIDs = append(result.JobIDs, j.ID)
		}
		if p.notifier != nil && len(insertedJobs) > 0 {
			p.notifier.NotifyJobs(req.ProjectID, insertedJobs)
		}

		// State advances after every committed batch so a failed later batch
		// keeps earlier progress.
		state.ScenesGenerated += len(insertedIntents)
		state.NarrativeGoal = plan.NextGoal
		state.ActiveThreads = topThreads(threads, 3)
		state.LastUnitSummary = plan.BatchSummary
		if err := p.store.UpdateNarrativeState(ctx, state); err != nil {
			return nil, apperrors.NewProcessingError("updating narrative state", err)
		}

		prevSummary = plan.BatchSummary
		sceneCursor += batch
		remaining -= batch

		p.logRun(ctx, req.ProjectID, model, tokens, time.Since(started), "ok",
			fmt.Sprintf("planned scenes %d-%d", sceneCursor-batch, sceneCursor-1))
	}

	result.NextNarrativeGoal = state.NarrativeGoal
	result.ActiveThreads = state.ActiveThreads
	result.DurationMS = time.Since(started).Milliseconds()
	return result, nil
}

func (p *Planner) loadOrCreateState(ctx context.Context, projectID string) (*models.NarrativeState, error) {
	state, err := p.store.GetNarrativeState(ctx, projectID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NewProcessingError("loading narrative state", err)
	}

	state = &models.NarrativeState{
		ID:               uuid.NewString(),
		ProjectID:        projectID,
		CurrentPhase:     "setup",
		ActiveThreads:    []string{},
		LockedFacts:      []string{},
		ForbiddenActions: []string{},
	}
	if err := p.store.CreateNarrativeState(ctx, state); err != nil {
		return nil, apperrors.NewProcessingError("creating narrative state", err)
	}
	// A concurrent call may have won the insert; re-read to converge.
	if existing, err := p.store.GetNarrativeState(ctx, projectID); err == nil {
		return existing, nil
	}
	return state, nil
}

func (p *Planner) resolveOutline(ctx context.Context, req DecideRequest) (map[string]any, error) {
	if req.Outline != nil {
		return req.Outline, nil
	}
	outline, err := p.store.GetOutline(ctx, req.ProjectID, req.EpisodeNumber)
	if errors.Is(err, store.ErrNotFound) {
		// Planning without an outline is allowed; the state carries enough.
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, apperrors.NewProcessingError("loading outline", err)
	}
	return outline.Document, nil
}

// planBatch performs one gateway call and validates the response. A
// finish_reason of "length" means the plan was truncated mid-JSON and is
// treated as a hard failure, never silently accepted.
func (p *Planner) planBatch(ctx context.Context, state *models.NarrativeState, threads, characters []string, outlineSummary string, firstScene, lastScene int, prevSummary string) (*batchPlan, string, int, error) {
	batchSize := lastScene - firstScene + 1
	model := p.tuning.SmallBatchModel
	if batchSize > p.tuning.LargeBatchCutoff {
		model = p.tuning.LargeBatchModel
	}

	prompt := buildBatchPrompt(state, threads, characters, outlineSummary, firstScene, lastScene, prevSummary)

	resp, err := p.provider.CompleteText(ctx, llm.CompletionRequest{
		Prompt:       prompt,
		SystemPrompt: plannerSystemPrompt,
		Model:        model,
		Temperature:  0.7,
		MaxTokens:    p.tuning.MaxTokens,
		JSONMode:     true,
	})
	if err != nil {
		return nil, model, 0, err
	}

	if resp.FinishReason == "length" {
		return nil, model, resp.TokensUsed, apperrors.NewUpstreamError(
			fmt.Sprintf("planner response truncated for scenes %d-%d", firstScene, lastScene), nil)
	}
	if resp.Text == "" {
		return nil, model, resp.TokensUsed, apperrors.NewUpstreamError(
			fmt.Sprintf("planner returned empty response for scenes %d-%d", firstScene, lastScene), nil)
	}

	var plan batchPlan
	if err := json.Unmarshal([]byte(llm.CleanJSONResponse(resp.Text)), &plan); err != nil {
		return nil, model, resp.TokensUsed, apperrors.NewUpstreamError(
			fmt.Sprintf("planner returned invalid JSON for scenes %d-%d", firstScene, lastScene), err)
	}
	if len(plan.Scenes) == 0 {
		return nil, model, resp.TokensUsed, apperrors.NewUpstreamError(
			fmt.Sprintf("planner returned no scenes for batch %d-%d", firstScene, lastScene), nil)
	}

	return &plan, model, resp.TokensUsed, nil
}

// buildBatchRows converts a plan into intent and job rows, skipping scene
// numbers that are already planned.
func (p *Planner) buildBatchRows(req DecideRequest, plan *batchPlan, planned map[int]bool) ([]models.SceneIntent, []models.Job) {
	var intents []models.SceneIntent
	var jobs []models.Job

	for _, scene := range plan.Scenes {
		if scene.SceneNumber <= 0 || planned[scene.SceneNumber] {
			continue
		}
		intent := models.SceneIntent{
			ID:                  uuid.NewString(),
			ProjectID:           req.ProjectID,
			EpisodeNumber:       req.EpisodeNumber,
			SceneNumber:         scene.SceneNumber,
			IntentSummary:       scene.IntentSummary,
			EmotionalTurn:       scene.EmotionalTurn,
			InformationRevealed: scene.InformationRevealed,
			InformationHidden:   scene.InformationHidden,
			CharactersInvolved:  scene.CharactersInvolved,
			ThreadToAdvance:     scene.ThreadToAdvance,
			Constraints:         scene.Constraints,
			Status:              models.IntentStatusPending,
		}
		intents = append(intents, intent)

		jobs = append(jobs, models.Job{
			ID:        uuid.NewString(),
			ProjectID: req.ProjectID,
			Type:      models.JobTypeSceneGeneration,
			Status:    models.JobStatusQueued,
			Payload: models.JobPayload{
				IntentID:      intent.ID,
				EpisodeNumber: req.EpisodeNumber,
				SceneNumber:   scene.SceneNumber,
			},
		})
	}

	return intents, jobs
}

func (p *Planner) logRun(ctx context.Context, projectID, model string, tokens int, elapsed time.Duration, outcome, detail string) {
	entry := &models.GenerationRunLog{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		Operation:  "narrative_decide",
		Model:      model,
		TokensUsed: tokens,
		DurationMS: elapsed.Milliseconds(),
		Outcome:    outcome,
		Detail:     detail,
	}
	if err := p.store.InsertRunLog(ctx, entry); err != nil {
		// Audit logging must never fail the request.
		log.Printf("narrative: failed to write run log: %v", err)
	}
}
