// internal/api/handlers.go
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/breakdown"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/models"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/narrative"
	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/store"
)

// Handlers wires the HTTP surface to the pipeline services.
type Handlers struct {
	planner    *narrative.Planner
	validator  *narrative.Validator
	normalizer *breakdown.Normalizer
	store      store.Store
	hub        *JobHub
	resp       *ResponseHelper
}

func NewHandlers(planner *narrative.Planner, validator *narrative.Validator, normalizer *breakdown.Normalizer, st store.Store, hub *JobHub) *Handlers {
	return &Handlers{
		planner:    planner,
		validator:  validator,
		normalizer: normalizer,
		store:      st,
		hub:        hub,
		resp:       NewResponseHelper(),
	}
}

type decideRequest struct {
	ProjectID     string         `json:"project_id" binding:"required,identifier"`
	EpisodeNumber int            `json:"episode_number" binding:"required,min=1"`
	ScenesToPlan  int            `json:"scenes_to_plan" binding:"omitempty,min=1,max=64"`
	Outline       map[string]any `json:"outline"`
}

// Decide handles POST /api/narrative/decide.
func (h *Handlers) Decide(c *gin.Context) {
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !requireProjectMember(c, h.store, h.resp, req.ProjectID) {
		return
	}

	result, err := h.planner.Decide(c.Request.Context(), narrative.DecideRequest{
		ProjectID:     req.ProjectID,
		EpisodeNumber: req.EpisodeNumber,
		ScenesToPlan:  req.ScenesToPlan,
		Outline:       req.Outline,
	})
	if err != nil {
		h.resp.FromAppError(c, err)
		return
	}
	h.resp.Success(c, result)
}

type validateRequest struct {
	ProjectID string `json:"project_id" binding:"required,identifier"`
	SceneID   string `json:"scene_id" binding:"required,uuid"`
}

// Validate handles POST /api/narrative/validate.
func (h *Handlers) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !requireProjectMember(c, h.store, h.resp, req.ProjectID) {
		return
	}

	result, err := h.validator.Validate(c.Request.Context(), narrative.ValidateRequest{
		ProjectID: req.ProjectID,
		SceneID:   req.SceneID,
	})
	if err != nil {
		h.resp.FromAppError(c, err)
		return
	}
	h.resp.Success(c, result)
}

type normalizeRequest struct {
	ProjectID    string         `json:"project_id" binding:"required,identifier"`
	Breakdown    map[string]any `json:"breakdown" binding:"required"`
	Filename     string         `json:"filename"`
	ProjectTitle string         `json:"project_title"`
	TitleLock    struct {
		Value  string `json:"value"`
		Locked bool   `json:"locked"`
	} `json:"title_lock"`
}

// NormalizeBreakdown handles POST /api/breakdown/normalize.
func (h *Handlers) NormalizeBreakdown(c *gin.Context) {
	var req normalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !requireProjectMember(c, h.store, h.resp, req.ProjectID) {
		return
	}

	result := h.normalizer.Normalize(req.Breakdown, req.Filename, req.ProjectTitle, models.TitleLock{
		Value:  req.TitleLock.Value,
		Locked: req.TitleLock.Locked,
	})
	h.resp.Success(c, result)
}

// ListJobs handles GET /api/projects/:id/jobs.
func (h *Handlers) ListJobs(c *gin.Context) {
	projectID := c.Param("id")
	if !requireProjectMember(c, h.store, h.resp, projectID) {
		return
	}

	jobs, err := h.store.ListJobs(c.Request.Context(), projectID)
	if err != nil {
		h.resp.InternalError(c, "listing jobs failed")
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	h.resp.Success(c, gin.H{"jobs": jobs})
}

// SubscribeJobs handles GET /api/projects/:id/jobs/ws.
func (h *Handlers) SubscribeJobs(c *gin.Context) {
	projectID := c.Param("id")
	if !requireProjectMember(c, h.store, h.resp, projectID) {
		return
	}
	h.hub.Subscribe(c, projectID)
}

// Health handles GET /health.
func (h *Handlers) Health(c *gin.Context) {
	h.resp.Success(c, gin.H{"status": "ok"})
}
