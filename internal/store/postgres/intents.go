// internal/store/postgres/intents.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/models"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/store"
)

func (c *Client) PlannedSceneNumbers(ctx context.Context, projectID string, episodeNumber int) (map[int]bool, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT scene_number FROM scene_intents WHERE project_id = $1 AND episode_number = $2`,
		projectID, episodeNumber)
	if err != nil {
		return nil, fmt.Errorf("listing planned scene numbers: %w", err)
	}
	defer rows.Close()

	planned := make(map[int]bool)
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning scene number: %w", err)
		}
		planned[n] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scene numbers: %w", err)
	}
	return planned, nil
}

// InsertIntentsWithJobs inserts intents and their jobs in one transaction so
// a crash can never leave an intent without its generation job. The unique
// constraint on (project_id, episode_number, scene_number) plus ON CONFLICT
// DO NOTHING makes concurrent decide calls safe: the loser of the race
// simply inserts nothing.
func (c *Client) InsertIntentsWithJobs(ctx context.Context, intents []models.SceneIntent, jobs []models.Job) ([]models.SceneIntent, []models.Job, error) {
	jobsByIntent := make(map[string]models.Job, len(jobs))
	for _, j := range jobs {
		jobsByIntent[j.Payload.IntentID] = j
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var insertedIntents []models.SceneIntent
	var insertedJobs []models.Job

	for _, intent := range intents {
		revealed, err := json.Marshal(orEmpty(intent.InformationRevealed))
		if err != nil {
			return nil, nil, fmt.Errorf("marshaling information_revealed: %w", err)
		}
		hidden, err := json.Marshal(orEmpty(intent.InformationHidden))
		if err != nil {
			return nil, nil, fmt.Errorf("marshaling information_hidden: %w", err)
		}
		involved, err := json.Marshal(orEmpty(intent.CharactersInvolved))
		if err != nil {
			return nil, nil, fmt.Errorf("marshaling characters_involved: %w", err)
		}

		tag, err := tx.Exec(ctx,
			`INSERT INTO scene_intents
  (id, project_id, episode_number, scene_number, intent_summary, emotional_turn,
   information_revealed, information_hidden, characters_involved,
   thread_to_advance, constraints, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (project_id, episode_number, scene_number) DO NOTHING`,
			intent.ID, intent.ProjectID, intent.EpisodeNumber, intent.SceneNumber,
			intent.IntentSummary, intent.EmotionalTurn, revealed, hidden, involved,
			intent.ThreadToAdvance, intent.Constraints, intent.Status)
		if err != nil {
			return nil, nil, fmt.Errorf("inserting intent for scene %d: %w", intent.SceneNumber, err)
		}
		if tag.RowsAffected() == 0 {
			// Already planned by an earlier batch or a concurrent call.
			continue
		}
		insertedIntents = append(insertedIntents, intent)

		job, ok := jobsByIntent[intent.ID]
		if !ok {
			continue
		}
		payload, err := json.Marshal(job.Payload)
		if err != nil {
			return nil, nil, fmt.Errorf("marshaling job payload: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO jobs (id, project_id, type, status, payload) VALUES ($1, $2, $3, $4, $5)`,
			job.ID, job.ProjectID, job.Type, job.Status, payload); err != nil {
			return nil, nil, fmt.Errorf("inserting job for intent %s: %w", intent.ID, err)
		}
		insertedJobs = append(insertedJobs, job)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("committing intents batch: %w", err)
	}
	return insertedIntents, insertedJobs, nil
}

func (c *Client) GetIntent(ctx context.Context, projectID string, episodeNumber, sceneNumber int) (*models.SceneIntent, error) {
	var intent models.SceneIntent
	var revealed, hidden, involved []byte
	err := c.pool.QueryRow(ctx,
		`SELECT id, project_id, episode_number, scene_number, intent_summary, emotional_turn,
       information_revealed, information_hidden, characters_involved,
       thread_to_advance, constraints, status, created_at
FROM scene_intents WHERE project_id = $1 AND episode_number = $2 AND scene_number = $3`,
		projectID, episodeNumber, sceneNumber,
	).Scan(&intent.ID, &intent.ProjectID, &intent.EpisodeNumber, &intent.SceneNumber,
		&intent.IntentSummary, &intent.EmotionalTurn, &revealed, &hidden, &involved,
		&intent.ThreadToAdvance, &intent.Constraints, &intent.Status, &intent.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting intent: %w", err)
	}

	if err := unmarshalStrings(revealed, &intent.InformationRevealed); err != nil {
		return nil, fmt.Errorf("unmarshaling information_revealed: %w", err)
	}
	if err := unmarshalStrings(hidden, &intent.InformationHidden); err != nil {
		return nil, fmt.Errorf("unmarshaling information_hidden: %w", err)
	}
	if err := unmarshalStrings(involved, &intent.CharactersInvolved); err != nil {
		return nil, fmt.Errorf("unmarshaling characters_involved: %w", err)
	}
	return &intent, nil
}

func (c *Client) UpdateIntentStatus(ctx context.Context, intentID, status string) error {
	if _, err := c.pool.Exec(ctx,
		`UPDATE scene_intents SET status = $2 WHERE id = $1`, intentID, status); err != nil {
		return fmt.Errorf("updating intent status: %w", err)
	}
	return nil
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
