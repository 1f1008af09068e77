package submissions

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pipeline-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the submissions service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches submission routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/submissions", h.create)
	rg.GET("/submissions/:id", h.get)
	rg.PATCH("/submissions/:id/stage", h.changeStage)
	rg.POST("/submissions/:id/activity", h.recordActivity)
}

type createSubmissionRequest struct {
	CandidateName    string   `json:"candidateName"`
	JobTitle         string   `json:"jobTitle"`
	Stage            string   `json:"stage"`
	RecruiterActorID string   `json:"recruiterActorId"`
	ClientActorID    string   `json:"clientActorId"`
	MatchScore       *float64 `json:"matchScore"`
}

func (h *Handler) create(c *gin.Context) {
	var req createSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	sub, err := h.Svc.Create(c.Request.Context(), Submission{
		CandidateName:    req.CandidateName,
		JobTitle:         req.JobTitle,
		Stage:            req.Stage,
		RecruiterActorID: req.RecruiterActorID,
		ClientActorID:    req.ClientActorID,
		MatchScore:       req.MatchScore,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create submission", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, sub)
}

func (h *Handler) get(c *gin.Context) {
	sub, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "submission not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load submission", nil)
		return
	}
	respond.JSON(c, http.StatusOK, sub)
}

type changeStageRequest struct {
	Stage string `json:"stage"`
}

func (h *Handler) changeStage(c *gin.Context) {
	var req changeStageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Stage == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "stage is required", nil)
		return
	}

	sub, err := h.Svc.ChangeStage(c.Request.Context(), c.Param("id"), req.Stage, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "submission not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to change stage", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, sub)
}

func (h *Handler) recordActivity(c *gin.Context) {
	if err := h.Svc.RecordActivity(c.Request.Context(), c.Param("id"), time.Now().UTC()); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "submission not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to record activity", nil)
		return
	}
	c.Status(http.StatusNoContent)
}
