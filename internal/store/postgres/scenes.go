// internal/store/postgres/scenes.go
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

func (c *Client) GetScene(ctx context.Context, sceneID string) (*models.WrittenScene, error) {
	var s models.WrittenScene
	err := c.pool.QueryRow(ctx,
		`SELECT id, project_id, episode_number, scene_number, heading, content,
       status, validation_score, created_at
FROM scenes WHERE id = $1`,
		sceneID,
	).Scan(&s.ID, &s.ProjectID, &s.EpisodeNumber, &s.SceneNumber, &s.Heading,
		&s.Content, &s.Status, &s.ValidationScore, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting scene: %w", err)
	}
	return &s, nil
}

func (c *Client) UpdateSceneValidation(ctx context.Context, sceneID string, score int, status string, checks models.ValidationChecks) error {
	detail, err := json.Marshal(checks)
	if err != nil {
		return fmt.Errorf("marshaling validation detail: %w", err)
	}
	if _, err := c.pool.Exec(ctx,
		`UPDATE scenes SET validation_score = $2, status = $3, validation_detail = $4 WHERE id = $1`,
		sceneID, score, status, detail); err != nil {
		return fmt.Errorf("updating scene validation: %w", err)
	}
	return nil
}

func (c *Client) CreateSceneRepair(ctx context.Context, repair *models.SceneRepair) error {
	failed, err := json.Marshal(orEmpty(repair.FailedChecks))
	if err != nil {
		return fmt.Errorf("marshaling failed checks: %w", err)
	}
	reasons, err := json.Marshal(orEmpty(repair.Reasons))
	if err != nil {
		return fmt.Errorf("marshaling repair reasons: %w", err)
	}
	if _, err := c.pool.Exec(ctx,
		`INSERT INTO scene_repairs (id, scene_id, intent_id, strategy, failed_checks, reasons)
VALUES ($1, $2, $3, $4, $5, $6)`,
		repair.ID, repair.SceneID, repair.IntentID, repair.Strategy, failed, reasons); err != nil {
		return fmt.Errorf("creating scene repair: %w", err)
	}
	return nil
}
