package deadlines

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pipeline-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the deadlines service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches rule and obligation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sla-rules", h.createRule)
	rg.GET("/sla-rules", h.listRules)
	rg.POST("/deadlines", h.startObligation)
	rg.POST("/deadlines/:id/complete", h.complete)
}

type createRuleRequest struct {
	Name           string `json:"name"`
	EntityType     string `json:"entityType"`
	WarningHours   int    `json:"warningHours"`
	DeadlineHours  int    `json:"deadlineHours"`
	DeadlineAction string `json:"deadlineAction"`
}

func (h *Handler) createRule(c *gin.Context) {
	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	rule, err := h.Svc.CreateRule(c.Request.Context(), Rule{
		Name:           req.Name,
		EntityType:     req.EntityType,
		WarningHours:   req.WarningHours,
		DeadlineHours:  req.DeadlineHours,
		DeadlineAction: req.DeadlineAction,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidRule) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create rule", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, rule)
}

func (h *Handler) listRules(c *gin.Context) {
	rules, err := h.Svc.ListRules(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list rules", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"rules": rules})
}

type startObligationRequest struct {
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	ActorID    string `json:"actorId"`
	RuleID     string `json:"ruleId"`
}

func (h *Handler) startObligation(c *gin.Context) {
	var req startObligationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	d, err := h.Svc.StartObligation(c.Request.Context(), req.EntityType, req.EntityID, req.ActorID, req.RuleID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrRuleNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "sla rule not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start obligation", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, d)
}

func (h *Handler) complete(c *gin.Context) {
	d, err := h.Svc.Complete(c.Request.Context(), c.Param("id"), time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "deadline not found", nil)
		case errors.Is(err, ErrClosed):
			respond.Error(c, http.StatusConflict, "conflict", "deadline is already completed", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to complete deadline", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, d)
}
