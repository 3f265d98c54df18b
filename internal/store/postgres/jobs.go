// internal/store/postgres/jobs.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/models"
)

func (c *Client) QueuedJobs(ctx context.Context, projectID, jobType string) ([]models.Job, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT id, project_id, type, status, payload, created_at, updated_at
FROM jobs WHERE project_id = $1 AND type = $2 AND status = $3
ORDER BY created_at`,
		projectID, jobType, models.JobStatusQueued)
	if err != nil {
		return nil, fmt.Errorf("listing queued jobs: %w", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (c *Client) ListJobs(ctx context.Context, projectID string) ([]models.Job, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT id, project_id, type, status, payload, created_at, updated_at
FROM jobs WHERE project_id = $1 ORDER BY created_at`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (c *Client) InsertRunLog(ctx context.Context, entry *models.GenerationRunLog) error {
	if _, err := c.pool.Exec(ctx,
		`INSERT INTO generation_run_logs
  (id, project_id, operation, model, tokens_used, duration_ms, outcome, detail)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.ProjectID, entry.Operation, entry.Model,
		entry.TokensUsed, entry.DurationMS, entry.Outcome, entry.Detail); err != nil {
		return fmt.Errorf("inserting run log: %w", err)
	}
	return nil
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanJobs(rows pgxRows) ([]models.Job, error) {
	var jobs []models.Job
	for rows.Next() {
		var j models.Job
		var payload []byte
		if err := rows.Scan(&j.ID, &j.ProjectID, &j.Type, &j.Status, &payload, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &j.Payload); err != nil {
				return nil, fmt.Errorf("unmarshaling job payload: %w", err)
			}
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating jobs: %w", err)
	}
	return jobs, nil
}
