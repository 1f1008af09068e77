package engine

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pipeline-backend/internal/dealhealth"
	"pipeline-backend/internal/shared/server/respond"
)

// Handler exposes the evaluation trigger surface.
type Handler struct {
	Svc    *Service
	Health dealhealth.Repo
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, health dealhealth.Repo) *Handler {
	return &Handler{Svc: svc, Health: health}
}

// RegisterRoutes attaches evaluation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/evaluations", h.evaluateAll)
	rg.POST("/submissions/:id/evaluate", h.evaluateOne)
	rg.GET("/submissions/:id/health", h.getHealth)
}

func (h *Handler) evaluateAll(c *gin.Context) {
	summary, err := h.Svc.EvaluateAll(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "evaluation cycle failed", nil)
		return
	}
	respond.JSON(c, http.StatusOK, summary)
}

func (h *Handler) evaluateOne(c *gin.Context) {
	health, err := h.Svc.Evaluate(c.Request.Context(), c.Param("id"), time.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "submission not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "evaluation failed", nil)
		return
	}
	respond.JSON(c, http.StatusOK, health)
}

func (h *Handler) getHealth(c *gin.Context) {
	health, err := h.Health.GetBySubmission(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, dealhealth.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no health snapshot for submission", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load health snapshot", nil)
		return
	}
	respond.JSON(c, http.StatusOK, health)
}
