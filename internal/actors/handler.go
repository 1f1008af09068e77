package actors

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pipeline-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the actors repo.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches actor routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/actors", h.create)
	rg.GET("/actors/:id", h.get)
}

type createActorRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

func (h *Handler) create(c *gin.Context) {
	var req createActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "name is required", nil)
		return
	}
	switch req.Role {
	case RoleAdmin, RoleRecruiter, RoleClient:
	default:
		respond.Error(c, http.StatusBadRequest, "validation_error", "role must be admin, recruiter, or client", nil)
		return
	}

	actor := Actor{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Role:      req.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Repo.Create(c.Request.Context(), actor); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create actor", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, actor)
}

func (h *Handler) get(c *gin.Context) {
	actor, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "actor not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load actor", nil)
		return
	}
	respond.JSON(c, http.StatusOK, actor)
}
