package v1

import (
	"github.com/gin-gonic/gin"

	"survivalboard/handlers/admin"
	"survivalboard/handlers/leaderboard"
	"survivalboard/handlers/sessions"
	"survivalboard/middleware"
)

// Handlers groups every v1 endpoint set
type Handlers struct {
	Sessions    *sessions.Handler
	Leaderboard *leaderboard.Handler
	Admin       *admin.Handler
}

// Register the endpoints for the v1 API
func Register(r *gin.Engine, h Handlers) {
	v1 := r.Group("/api/v1")

	// Add metrics middleware to all routes
	v1.Use(middleware.MetricsMiddleware())

	RegisterPingRoutes(v1)
	h.Sessions.RegisterRoutes(v1)
	h.Leaderboard.RegisterRoutes(v1)
	h.Admin.RegisterRoutes(v1)

	// Register metrics endpoint
	RegisterMetricsRoutes(v1)
}
