// internal/models/narrative.go
package models

import (
	"time"
)

// Scene intent lifecycle.
const (
	IntentStatusPending     = "pending"
	IntentStatusWritten     = "written"
	IntentStatusValidated   = "validated"
	IntentStatusNeedsRepair = "needs_repair"
	IntentStatusRejected    = "rejected"
)

// Repair routing outcomes.
const (
	RepairAccept  = "accept"
	RepairPartial = "partial"
	RepairRewrite = "rewrite"
	RepairReject  = "reject"
)

// Job lifecycle.
const (
	JobStatusQueued  = "queued"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

const JobTypeSceneGeneration = "scene_generation"

// NarrativeState is the persisted planning state, one row per project.
// LockedFacts are immutable constraints scenes must never contradict;
// ForbiddenActions are time-boxed restrictions lifted as the story advances.
type NarrativeState struct {
	ID               string    `json:"id"`
	ProjectID        string    `json:"project_id"`
	CurrentPhase     string    `json:"current_phase"`
	ActiveThreads    []string  `json:"active_threads"`
	LockedFacts      []string  `json:"locked_facts"`
	ForbiddenActions []string  `json:"forbidden_actions"`
	ScenesGenerated  int       `json:"scenes_generated"`
	NarrativeGoal    string    `json:"narrative_goal"`
	LastUnitSummary  string    `json:"last_unit_summary"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// SceneIntent is a planning unit: what a scene must accomplish dramatically,
// authored before any prose exists.
type SceneIntent struct {
	ID                  string    `json:"id"`
	ProjectID           string    `json:"project_id"`
	EpisodeNumber       int       `json:"episode_number"`
	SceneNumber         int       `json:"scene_number"`
	IntentSummary       string    `json:"intent_summary"`
	EmotionalTurn       string    `json:"emotional_turn"`
	InformationRevealed []string  `json:"information_revealed"`
	InformationHidden   []string  `json:"information_hidden"`
	CharactersInvolved  []string  `json:"characters_involved"`
	ThreadToAdvance     string    `json:"thread_to_advance"`
	Constraints         string    `json:"constraints"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"created_at"`
}

// WrittenScene is a scene row with its validation outcome folded in.
type WrittenScene struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"project_id"`
	EpisodeNumber   int       `json:"episode_number"`
	SceneNumber     int       `json:"scene_number"`
	Heading         string    `json:"heading,omitempty"`
	Content         string    `json:"content"`
	Status          string    `json:"status"`
	ValidationScore int       `json:"validation_score"`
	CreatedAt       time.Time `json:"created_at"`
}

// CheckResult is the outcome of one rubric check.
type CheckResult struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// ValidationChecks holds the seven rubric checks for one scene.
type ValidationChecks struct {
	IntentFulfilled      CheckResult `json:"intent_fulfilled"`
	ForbiddenRespected   CheckResult `json:"forbidden_respected"`
	ThreadAdvanced       CheckResult `json:"thread_advanced"`
	NoPrematureClosure   CheckResult `json:"no_premature_closure"`
	ToneCoherent         CheckResult `json:"tone_coherent"`
	NoRepetition         CheckResult `json:"no_repetition"`
	EmotionalProgression CheckResult `json:"emotional_progression"`
}

// All returns the checks in rubric order with their wire names.
func (c ValidationChecks) All() []NamedCheck {
	return []NamedCheck{
		{"intent_fulfilled", c.IntentFulfilled},
		{"forbidden_respected", c.ForbiddenRespected},
		{"thread_advanced", c.ThreadAdvanced},
		{"no_premature_closure", c.NoPrematureClosure},
		{"tone_coherent", c.ToneCoherent},
		{"no_repetition", c.NoRepetition},
		{"emotional_progression", c.EmotionalProgression},
	}
}

type NamedCheck struct {
	Name   string
	Result CheckResult
}

// ValidationResult is computed per scene on each validate call. It is not
// persisted as its own entity; it is folded into the scene row and may spawn
// a SceneRepair.
type ValidationResult struct {
	Checks         ValidationChecks `json:"checks"`
	Score          int              `json:"score"`
	PassedCount    int              `json:"passed_count"`
	Valid          bool             `json:"valid"`
	RepairStrategy string           `json:"repair_strategy"`
}

// SceneRepair carries failed-check reasons to drive a downstream rewrite.
type SceneRepair struct {
	ID           string    `json:"id"`
	SceneID      string    `json:"scene_id"`
	IntentID     string    `json:"intent_id,omitempty"`
	Strategy     string    `json:"strategy"`
	FailedChecks []string  `json:"failed_checks"`
	Reasons      []string  `json:"reasons"`
	CreatedAt    time.Time `json:"created_at"`
}

// Job is a queued downstream generation task.
type Job struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"project_id"`
	Type      string     `json:"type"`
	Status    string     `json:"status"`
	Payload   JobPayload `json:"payload"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type JobPayload struct {
	IntentID      string `json:"intent_id,omitempty"`
	EpisodeNumber int    `json:"episode_number,omitempty"`
	SceneNumber   int    `json:"scene_number,omitempty"`
}

// GenerationRunLog is an audit row written after every decide/validate call.
type GenerationRunLog struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	Operation  string    `json:"operation"`
	Model      string    `json:"model,omitempty"`
	TokensUsed int       `json:"tokens_used,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
