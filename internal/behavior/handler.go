package behavior

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pipeline-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the behavior service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches behavior routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/observations", h.recordObservation)
	rg.GET("/actors/:id/behavior", h.getScore)
}

type recordObservationRequest struct {
	ActorID      string  `json:"actorId"`
	LatencyHours float64 `json:"latencyHours"`
}

func (h *Handler) recordObservation(c *gin.Context) {
	var req recordObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	obs, err := h.Svc.RecordObservation(c.Request.Context(), req.ActorID, req.LatencyHours, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "actor id and a non-negative latency are required", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to record observation", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, obs)
}

func (h *Handler) getScore(c *gin.Context) {
	score, err := h.Svc.GetScore(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no behavior snapshot for actor", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load behavior snapshot", nil)
		return
	}
	respond.JSON(c, http.StatusOK, score)
}
