// internal/store/postgres/schema.go
package postgres

import (
	"context"
	"fmt"
)

// EnsureSchema creates the pipeline tables. All DDL runs in one call, which
// PostgreSQL executes atomically in an implicit transaction; IF NOT EXISTS
// keeps it idempotent across restarts.
//
// The unique constraint on scene_intents(project_id, episode_number,
// scene_number) is load-bearing: combined with ON CONFLICT DO NOTHING it
// guarantees at-most-once intent creation even when two decide calls race.
func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS projects (
    id         TEXT PRIMARY KEY,
    title      TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ DEFAULT now()
);

CREATE TABLE IF NOT EXISTS project_members (
    project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    user_id    TEXT NOT NULL,
    role       TEXT NOT NULL DEFAULT 'member',
    CONSTRAINT uq_project_member UNIQUE (project_id, user_id)
);

CREATE TABLE IF NOT EXISTS project_outlines (
    id             TEXT PRIMARY KEY,
    project_id     TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    episode_number INTEGER NOT NULL DEFAULT 0,
    document       JSONB NOT NULL DEFAULT '{}',
    created_at     TIMESTAMPTZ DEFAULT now(),
    CONSTRAINT uq_outline_episode UNIQUE (project_id, episode_number)
);

CREATE TABLE IF NOT EXISTS narrative_state (
    id                TEXT PRIMARY KEY,
    project_id        TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    current_phase     TEXT NOT NULL DEFAULT 'setup',
    active_threads    JSONB NOT NULL DEFAULT '[]',
    locked_facts      JSONB NOT NULL DEFAULT '[]',
    forbidden_actions JSONB NOT NULL DEFAULT '[]',
    scenes_generated  INTEGER NOT NULL DEFAULT 0,
    narrative_goal    TEXT NOT NULL DEFAULT '',
    last_unit_summary TEXT NOT NULL DEFAULT '',
    updated_at        TIMESTAMPTZ DEFAULT now(),
    CONSTRAINT uq_narrative_state_project UNIQUE (project_id)
);

CREATE TABLE IF NOT EXISTS scene_intents (
    id                   TEXT PRIMARY KEY,
    project_id           TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    episode_number       INTEGER NOT NULL DEFAULT 0,
    scene_number         INTEGER NOT NULL,
    intent_summary       TEXT NOT NULL DEFAULT '',
    emotional_turn       TEXT NOT NULL DEFAULT '',
    information_revealed JSONB NOT NULL DEFAULT '[]',
    information_hidden   JSONB NOT NULL DEFAULT '[]',
    characters_involved  JSONB NOT NULL DEFAULT '[]',
    thread_to_advance    TEXT NOT NULL DEFAULT '',
    constraints          TEXT NOT NULL DEFAULT '',
    status               TEXT NOT NULL DEFAULT 'pending',
    created_at           TIMESTAMPTZ DEFAULT now(),
    CONSTRAINT uq_intent_scene UNIQUE (project_id, episode_number, scene_number)
);

CREATE TABLE IF NOT EXISTS scenes (
    id               TEXT PRIMARY KEY,
    project_id       TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    episode_number   INTEGER NOT NULL DEFAULT 0,
    scene_number     INTEGER NOT NULL,
    heading          TEXT NOT NULL DEFAULT '',
    content          TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL DEFAULT 'draft',
    validation_score INTEGER NOT NULL DEFAULT 0,
    validation_detail JSONB NOT NULL DEFAULT '{}',
    created_at       TIMESTAMPTZ DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scene_repairs (
    id            TEXT PRIMARY KEY,
    scene_id      TEXT NOT NULL REFERENCES scenes(id) ON DELETE CASCADE,
    intent_id     TEXT,
    strategy      TEXT NOT NULL,
    failed_checks JSONB NOT NULL DEFAULT '[]',
    reasons       JSONB NOT NULL DEFAULT '[]',
    created_at    TIMESTAMPTZ DEFAULT now()
);

CREATE TABLE IF NOT EXISTS jobs (
    id         TEXT PRIMARY KEY,
    project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    type       TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'queued',
    payload    JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ DEFAULT now(),
    updated_at TIMESTAMPTZ DEFAULT now()
);

CREATE TABLE IF NOT EXISTS generation_run_logs (
    id          TEXT PRIMARY KEY,
    project_id  TEXT NOT NULL,
    operation   TEXT NOT NULL,
    model       TEXT NOT NULL DEFAULT '',
    tokens_used INTEGER NOT NULL DEFAULT 0,
    duration_ms BIGINT NOT NULL DEFAULT 0,
    outcome     TEXT NOT NULL DEFAULT '',
    detail      TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_intents_project ON scene_intents (project_id, episode_number);
CREATE INDEX IF NOT EXISTS idx_scenes_project ON scenes (project_id, episode_number, scene_number);
CREATE INDEX IF NOT EXISTS idx_jobs_project_status ON jobs (project_id, status);
CREATE INDEX IF NOT EXISTS idx_repairs_scene ON scene_repairs (scene_id);
CREATE INDEX IF NOT EXISTS idx_runlogs_project ON generation_run_logs (project_id);
`
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
