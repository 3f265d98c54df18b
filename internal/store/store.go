// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Outline is a stored project outline; Document holds the raw outline JSON
// in whatever shape the upstream generator produced.
type Outline struct {
	ID            string
	ProjectID     string
	EpisodeNumber int
	Document      map[string]any
}

// Store is the persistence contract for the planning pipeline. One
// implementation backed by Postgres; tests use in-memory fakes.
type Store interface {
	Close()
	EnsureSchema(ctx context.Context) error

	// Projects and membership.
	IsProjectMember(ctx context.Context, projectID, userID string) (bool, error)

	// Outlines.
	GetOutline(ctx context.Context, projectID string, episodeNumber int) (*Outline, error)

	// Narrative state, one row per project.
	GetNarrativeState(ctx context.Context, projectID string) (*models.NarrativeState, error)
	CreateNarrativeState(ctx context.Context, state *models.NarrativeState) error
	UpdateNarrativeState(ctx context.Context, state *models.NarrativeState) error

	// Scene intents and jobs.
	QueuedJobs(ctx context.Context, projectID, jobType string) ([]models.Job, error)
	PlannedSceneNumbers(ctx context.Context, projectID string, episodeNumber int) (map[int]bool, error)
	// InsertIntentsWithJobs inserts a batch of intents and their generation
	// jobs inside one transaction. Intents whose (project, episode, scene
	// number) is already planned are skipped via the unique constraint, and
	// no job is created for a skipped intent.
	InsertIntentsWithJobs(ctx context.Context, intents []models.SceneIntent, jobs []models.Job) ([]models.SceneIntent, []models.Job, error)
	ListJobs(ctx context.Context, projectID string) ([]models.Job, error)

	// Scenes and validation outcomes.
	GetScene(ctx context.Context, sceneID string) (*models.WrittenScene, error)
	GetIntent(ctx context.Context, projectID string, episodeNumber, sceneNumber int) (*models.SceneIntent, error)
	UpdateSceneValidation(ctx context.Context, sceneID string, score int, status string, checks models.ValidationChecks) error
	UpdateIntentStatus(ctx context.Context, intentID, status string) error
	CreateSceneRepair(ctx context.Context, repair *models.SceneRepair) error

	// Audit trail.
	InsertRunLog(ctx context.Context, entry *models.GenerationRunLog) error
}
