// internal/narrative/decide_test.go
package narrative

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/config"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/llm"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/models"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/store"
)

// fakeStore is an in-memory Store for planner tests.
type fakeStore struct {
	states  map[string]*models.NarrativeState
	intents []models.SceneIntent
	jobs    []models.Job
	runLogs []models.GenerationRunLog
	outline map[string]any
}

func newFakeStore() *fakeStore {
	return &fakeStore{states: make(map[string]*models.NarrativeState)}
}

func (f *fakeStore) Close()                                 {}
func (f *fakeStore) EnsureSchema(ctx context.Context) error { return nil }

func (f *fakeStore) IsProjectMember(ctx context.Context, projectID, userID string) (bool, error) {
	return true, nil
}

func (f *fakeStore) GetOutline(ctx context.Context, projectID string, episodeNumber int) (*store.Outline, error) {
	if f.outline == nil {
		return nil, store.ErrNotFound
	}
	return &store.Outline{ProjectID: projectID, EpisodeNumber: episodeNumber, Document: f.outline}, nil
}

func (f *fakeStore) GetNarrativeState(ctx context.Context, projectID string) (*models.NarrativeState, error) {
	s, ok := f.states[projectID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStore) CreateNarrativeState(ctx context.Context, state *models.NarrativeState) error {
	if _, exists := f.states[state.ProjectID]; !exists {
		copied := *state
		f.states[state.ProjectID] = &copied
	}
	return nil
}

func (f *fakeStore) UpdateNarrativeState(ctx context.Context, state *models.NarrativeState) error {
	copied := *state
	f.states[state.ProjectID] = &copied
	return nil
}

func (f *fakeStore) QueuedJobs(ctx context.Context, projectID, jobType string) ([]models.Job, error) {
	var queued []models.Job
	for _, j := range f.jobs {
		if j.ProjectID == projectID && j.Type == jobType && j.Status == models.JobStatusQueued {
			queued = append(queued, j)
		}
	}
	return queued, nil
}

func (f *fakeStore) PlannedSceneNumbers(ctx context.Context, projectID string, episodeNumber int) (map[int]bool, error) {
	planned := make(map[int]bool)
	for _, intent := range f.intents {
		if intent.ProjectID == projectID && intent.EpisodeNumber == episodeNumber {
			planned[intent.SceneNumber] = true
		}
	}
	return planned, nil
}

func (f *fakeStore) InsertIntentsWithJobs(ctx context.Context, intents []models.SceneIntent, jobs []models.Job) ([]models.SceneIntent, []models.Job, error) {
	jobsByIntent := make(map[string]models.Job, len(jobs))
	for _, j := range jobs {
		jobsByIntent[j.Payload.IntentID] = j
	}

	existing := make(map[string]bool)
	for _, intent := range f.intents {
		existing[fmt.Sprintf("%s/%d/%d", intent.ProjectID, intent.EpisodeNumber, intent.SceneNumber)] = true
	}

	var insertedIntents []models.SceneIntent
	var insertedJobs []models.Job
	for _, intent := range intents {
		key := fmt.Sprintf("%s/%d/%d", intent.ProjectID, intent.EpisodeNumber, intent.SceneNumber)
		if existing[key] {
			continue
		}
		existing[key] = true
		f.intents = append(f.intents, intent)
		insertedIntents = append(insertedIntents, intent)
		if job, ok := jobsByIntent[intent.ID]; ok {
			f.jobs = append(f.jobs, job)
			insertedJobs = append(insertedJobs, job)
		}
	}
	return insertedIntents, insertedJobs, nil
}

func (f *fakeStore) ListJobs(ctx context.Context, projectID string) ([]models.Job, error) {
	return f.jobs, nil
}

func (f *fakeStore) GetScene(ctx context.Context, sceneID string) (*models.WrittenScene, error) {
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetIntent(ctx context.Context, projectID string, episodeNumber, sceneNumber int) (*models.SceneIntent, error) {
	for _, intent := range f.intents {
		if intent.ProjectID == projectID && intent.EpisodeNumber == episodeNumber && intent.SceneNumber == sceneNumber {
			copied := intent
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) UpdateSceneValidation(ctx context.Context, sceneID string, score int, status string, checks models.ValidationChecks) error {
	return nil
}

func (f *fakeStore) UpdateIntentStatus(ctx context.Context, intentID, status string) error {
	for i := range f.intents {
		if f.intents[i].ID == intentID {
			f.intents[i].Status = status
		}
	}
	return nil
}

func (f *fakeStore) CreateSceneRepair(ctx context.Context, repair *models.SceneRepair) error {
	return nil
}

func (f *fakeStore) InsertRunLog(ctx context.Context, entry *models.GenerationRunLog) error {
	f.runLogs = append(f.runLogs, *entry)
	return nil
}

var _ store.Store = (*fakeStore)(nil)

// fakeProvider replays canned responses in order.
type fakeProvider struct {
	responses []*llm.CompletionResponse
	errs      []error
	requests  []llm.CompletionRequest
}

func (p *fakeProvider) Initialize(config map[string]string) error { return nil }
func (p *fakeProvider) GetName() string                           { return "fake" }

func (p *fakeProvider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	idx := len(p.requests)
	p.requests = append(p.requests, req)
	if idx < len(p.errs) && p.errs[idx] != nil {
		return nil, p.errs[idx]
	}
	if idx >= len(p.responses) {
		return nil, fmt.Errorf("unexpected completion call %d", idx)
	}
	return p.responses[idx], nil
}

func planJSON(first, last int) string {
	var scenes []string
	for n := first; n <= last; n++ {
		scenes = append(scenes, fmt.Sprintf(`{
  "scene_number": %d,
  "intent_summary": "scene %d does a thing",
  "emotional_turn": "hope to dread",
  "information_revealed": ["a fact"],
  "information_hidden": ["a secret"],
  "characters_involved": ["ELENA"],
  "thread_to_advance": "the heist",
  "constraints": "no flashbacks"
}`, n, n))
	}
	return fmt.Sprintf(`{"scenes": [%s], "batch_summary": "scenes %d to %d happened", "next_narrative_goal": "escalate"}`,
		strings.Join(scenes, ","), first, last)
}

func testNarrativeTuning() config.NarrativeTuning {
	return config.NarrativeTuning{
		BatchSize:        8,
		LargeBatchCutoff: 5,
		LargeBatchModel:  "big-model",
		SmallBatchModel:  "small-model",
		BatchInterval:    config.Duration(time.Millisecond),
		MaxTokens:        1024,
		Rubric:           config.DefaultTuning().Narrative.Rubric,
	}
}

func testOutline() map[string]any {
	return map[string]any{
		"logline": "a crew plans one last job",
		"threads": []any{"the heist", "the betrayal", "the debt", "the romance"},
		"main_characters": []any{
			map[string]any{"name": "ELENA"},
			map[string]any{"name": "MARCUS"},
		},
	}
}

func TestDecidePlansBatchesAndQueuesJobs(t *testing.T) {
	st := newFakeStore()
	provider := &fakeProvider{
		responses: []*llm.CompletionResponse{
			{Text: planJSON(1, 8), FinishReason: "stop", TokensUsed: 900},
			{Text: planJSON(9, 16), FinishReason: "stop", TokensUsed: 900},
		},
	}
	planner := NewPlanner(st, provider, testNarrativeTuning(), nil)

	result, err := planner.Decide(context.Background(), DecideRequest{
		ProjectID:     "proj-1",
		EpisodeNumber: 1,
		ScenesToPlan:  16,
		Outline:       testOutline(),
	})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}

	if result.ScenesPlanned != 16 {
		t.Errorf("ScenesPlanned = %d, want 16", result.ScenesPlanned)
	}
	if result.JobsCreated != 16 || len(result.JobIDs) != 16 {
		t.Errorf("JobsCreated = %d (%d ids), want 16", result.JobsCreated, len(result.JobIDs))
	}
	if result.ReusingExistingJobs {
		t.Error("ReusingExistingJobs = true on a fresh plan")
	}
	if result.NextNarrativeGoal != "escalate" {
		t.Errorf("NextNarrativeGoal = %q, want escalate", result.NextNarrativeGoal)
	}

	if len(provider.requests) != 2 {
		t.Fatalf("provider calls = %d, want 2", len(provider.requests))
	}
	// Full batches exceed the cutoff and use the larger model.
	for i, req := range provider.requests {
		if req.Model != "big-model" {
			t.Errorf("request %d model = %q, want big-model", i, req.Model)
		}
		if !req.JSONMode {
			t.Errorf("request %d JSONMode = false, want true", i)
		}
	}

	state := st.states["proj-1"]
	if state == nil {
		t.Fatal("narrative state was not persisted")
	}
	if state.ScenesGenerated != 16 {
		t.Errorf("ScenesGenerated = %d, want 16", state.ScenesGenerated)
	}
	if len(state.ActiveThreads) != 3 {
		t.Errorf("ActiveThreads = %v, want top 3", state.ActiveThreads)
	}
	if state.LastUnitSummary != "scenes 9 to 16 happened" {
		t.Errorf("LastUnitSummary = %q, want the last batch summary", state.LastUnitSummary)
	}

	if len(st.runLogs) != 2 {
		t.Errorf("run logs = %d, want 2", len(st.runLogs))
	}
}

func TestDecideCreatesStateOnFirstCall(t *testing.T) {
	st := newFakeStore()
	provider := &fakeProvider{
		responses: []*llm.CompletionResponse{{Text: planJSON(1, 3), FinishReason: "stop"}},
	}
	planner := NewPlanner(st, provider, testNarrativeTuning(), nil)

	_, err := planner.Decide(context.Background(), DecideRequest{
		ProjectID:     "proj-new",
		EpisodeNumber: 1,
		ScenesToPlan:  3,
		Outline:       testOutline(),
	})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}

	state := st.states["proj-new"]
	if state == nil {
		t.Fatal("state was not created")
	}
	if state.CurrentPhase != "setup" {
		t.Errorf("CurrentPhase = %q, want setup", state.CurrentPhase)
	}

	// A three-scene batch stays under the cutoff and uses the small model.
	if provider.requests[0].Model != "small-model" {
		t.Errorf("model = %q, want small-model", provider.requests[0].Model)
	}
}

func TestDecideResumesWhenJobsAreQueued(t *testing.T) {
	st := newFakeStore()
	st.states["proj-1"] = &models.NarrativeState{
		ID: "state-1", ProjectID: "proj-1", CurrentPhase: "setup",
		NarrativeGoal: "already planned", ActiveThreads: []string{"the heist"},
	}
	st.jobs = []models.Job{
		{ID: "job-1", ProjectID: "proj-1", Type: models.JobTypeSceneGeneration, Status: models.JobStatusQueued},
		{ID: "job-2", ProjectID: "proj-1", Type: models.JobTypeSceneGeneration, Status: models.JobStatusQueued},
	}
	provider := &fakeProvider{}
	planner := NewPlanner(st, provider, testNarrativeTuning(), nil)

	result, err := planner.Decide(context.Background(), DecideRequest{
		ProjectID:     "proj-1",
		EpisodeNumber: 1,
		ScenesToPlan:  8,
	})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}

	if !result.ReusingExistingJobs {
		t.Error("ReusingExistingJobs = false, want true")
	}
	if result.JobsCreated != 2 || len(result.JobIDs) != 2 {
		t.Errorf("JobsCreated = %d (%v), want the 2 queued jobs", result.JobsCreated, result.JobIDs)
	}
	if result.JobIDs[0] != "job-1" || result.JobIDs[1] != "job-2" {
		t.Errorf("JobIDs = %v, want [job-1 job-2]", result.JobIDs)
	}
	if len(provider.requests) != 0 {
		t.Errorf("provider calls = %d, want 0 on resume", len(provider.requests))
	}
}

func TestDecideTruncationFailsBatchKeepsPrior(t *testing.T) {
	st := newFakeStore()
	provider := &fakeProvider{
		responses: []*llm.CompletionResponse{
			{Text: planJSON(1, 8), FinishReason: "stop"},
			{Text: `{"scenes": [{"scene_number": 9`, FinishReason: "length"},
		},
	}
	planner := NewPlanner(st, provider, testNarrativeTuning(), nil)

	_, err := planner.Decide(context.Background(), DecideRequest{
		ProjectID:     "proj-1",
		EpisodeNumber: 1,
		ScenesToPlan:  16,
		Outline:       testOutline(),
	})
	if err == nil {
		t.Fatal("expected error for truncated batch")
	}

	// The first committed batch survives the second batch's failure.
	if len(st.intents) != 8 {
		t.Errorf("stored intents = %d, want 8 from the committed batch", len(st.intents))
	}
	state := st.states["proj-1"]
	if state == nil || state.ScenesGenerated != 8 {
		t.Errorf("state after failure = %+v, want ScenesGenerated 8", state)
	}
}

func TestDecideSkipsAlreadyPlannedScenes(t *testing.T) {
	st := newFakeStore()
	st.intents = []models.SceneIntent{
		{ID: "pre", ProjectID: "proj-1", EpisodeNumber: 1, SceneNumber: 2},
	}
	provider := &fakeProvider{
		responses: []*llm.CompletionResponse{{Text: planJSON(1, 4), FinishReason: "stop"}},
	}
	planner := NewPlanner(st, provider, testNarrativeTuning(), nil)

	result, err := planner.Decide(context.Background(), DecideRequest{
		ProjectID:     "proj-1",
		EpisodeNumber: 1,
		ScenesToPlan:  4,
		Outline:       testOutline(),
	})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}

	if result.ScenesPlanned != 3 {
		t.Errorf("ScenesPlanned = %d, want 3 (scene 2 already planned)", result.ScenesPlanned)
	}
	if result.JobsCreated != 3 {
		t.Errorf("JobsCreated = %d, want 3", result.JobsCreated)
	}
}
