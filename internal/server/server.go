package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"pipeline-backend/internal/actors"
	"pipeline-backend/internal/behavior"
	"pipeline-backend/internal/config"
	"pipeline-backend/internal/deadlines"
	"pipeline-backend/internal/engine"
	"pipeline-backend/internal/shared/server/middleware"
	"pipeline-backend/internal/submissions"
)

// Handlers bundles every feature handler the router mounts.
type Handlers struct {
	Actors      *actors.Handler
	Submissions *submissions.Handler
	Deadlines   *deadlines.Handler
	Behavior    *behavior.Handler
	Engine      *engine.Handler
}

// NewEngine builds the gin engine with middleware and routes registered.
func NewEngine(cfg config.Config, h Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	registerRoutes(r, h)
	return r
}

// Addr returns a normalized listen address for the given port.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
