// internal/store/postgres/state.go
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

func (c *Client) IsProjectMember(ctx context.Context, projectID, userID string) (bool, error) {
	var exists bool
	err := c.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2)`,
		projectID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking project membership: %w", err)
	}
	return exists, nil
}

func (c *Client) GetOutline(ctx context.Context, projectID string, episodeNumber int) (*store.Outline, error) {
	var o store.Outline
	var docBytes []byte
	err := c.pool.QueryRow(ctx,
		`SELECT id, project_id, episode_number, document
FROM project_outlines WHERE project_id = $1 AND episode_number = $2`,
		projectID, episodeNumber,
	).Scan(&o.ID, &o.ProjectID, &o.EpisodeNumber, &docBytes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting outline: %w", err)
	}
	if len(docBytes) > 0 {
		if err := json.Unmarshal(docBytes, &o.Document); err != nil {
			return nil, fmt.Errorf("unmarshaling outline document: %w", err)
		}
	}
	if o.Document == nil {
		o.Document = map[string]any{}
	}
	return &o, nil
}

func (c *Client) GetNarrativeState(ctx context.Context, projectID string) (*models.NarrativeState, error) {
	var s models.NarrativeState
	var threads, facts, forbidden []byte
	err := c.pool.QueryRow(ctx,
		`SELECT id, project_id, current_phase, active_threads, locked_facts,
       forbidden_actions, scenes_generated, narrative_goal, last_unit_summary, updated_at
FROM narrative_state WHERE project_id = $1`,
		projectID,
	).Scan(&s.ID, &s.ProjectID, &s.CurrentPhase, &threads, &facts,
		&forbidden, &s.ScenesGenerated, &s.NarrativeGoal, &s.LastUnitSummary, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting narrative state: %w", err)
	}

	if err := unmarshalStrings(threads, &s.ActiveThreads); err != nil {
		return nil, fmt.Errorf("unmarshaling active threads: %w", err)
	}
	if err := unmarshalStrings(facts, &s.LockedFacts); err != nil {
		return nil, fmt.Errorf("unmarshaling locked facts: %w", err)
	}
	if err := unmarshalStrings(forbidden, &s.ForbiddenActions); err != nil {
		return nil, fmt.Errorf("unmarshaling forbidden actions: %w", err)
	}
	return &s, nil
}

func (c *Client) CreateNarrativeState(ctx context.Context, state *models.NarrativeState) error {
	threads, facts, forbidden, err := marshalStateLists(state)
	if err != nil {
		return err
	}
	_, err = c.pool.Exec(ctx,
		`INSERT INTO narrative_state
  (id, project_id, current_phase, active_threads, locked_facts, forbidden_actions,
   scenes_generated, narrative_goal, last_unit_summary, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
ON CONFLICT (project_id) DO NOTHING`,
		state.ID, state.ProjectID, state.CurrentPhase, threads, facts, forbidden,
		state.ScenesGenerated, state.NarrativeGoal, state.LastUnitSummary)
	if err != nil {
		return fmt.Errorf("creating narrative state: %w", err)
	}
	return nil
}

func (c *Client) UpdateNarrativeState(ctx context.Context, state *models.NarrativeState) error {
	threads, facts, forbidden, err := marshalStateLists(state)
	if err != nil {
		return err
	}
	_, err = c.pool.Exec(ctx,
		`UPDATE narrative_state SET
  current_phase = $2, active_threads = $3, locked_facts = $4, forbidden_actions = $5,
  scenes_generated = $6, narrative_goal = $7, last_unit_summary = $8, updated_at = now()
WHERE project_id = $1`,
		state.ProjectID, state.CurrentPhase, threads, facts, forbidden,
		state.ScenesGenerated, state.NarrativeGoal, state.LastUnitSummary)
	if err != nil {
		return fmt.Errorf("updating narrative state: %w", err)
	}
	return nil
}

func marshalStateLists(state *models.NarrativeState) (threads, facts, forbidden []byte, err error) {
	if threads, err = marshalStrings(state.ActiveThreads); err != nil {
		return nil, nil, nil, fmt.Errorf("marshaling active threads: %w", err)
	}
	if facts, err = marshalStrings(state.LockedFacts); err != nil {
		return nil, nil, nil, fmt.Errorf("marshaling locked facts: %w", err)
	}
	if forbidden, err = marshalStrings(state.ForbiddenActions); err != nil {
		return nil, nil, nil, fmt.Errorf("marshaling forbidden actions: %w", err)
	}
	return threads, facts, forbidden, nil
}

func marshalStrings(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

func unmarshalStrings(data []byte, target *[]string) error {
	if len(data) == 0 {
		*target = []string{}
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return err
	}
	if *target == nil {
		*target = []string{}
	}
	return nil
}
