package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pipeline-backend/internal/shared/metrics"
	"pipeline-backend/internal/shared/server/respond"
)

func registerRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	h.Actors.RegisterRoutes(api)
	h.Submissions.RegisterRoutes(api)
	h.Deadlines.RegisterRoutes(api)
	h.Behavior.RegisterRoutes(api)
	h.Engine.RegisterRoutes(api)
}
