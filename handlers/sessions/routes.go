package sessions

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"survivalboard/middleware"
	"survivalboard/services"
)

// Handler serves the client-facing session and score endpoints
type Handler struct {
	sessions    *services.SessionService
	scores      *services.ScoreService
	leaderboard *services.LeaderboardService
	limiter     *middleware.RateLimiter
	log         logrus.FieldLogger
}

func NewHandler(sessions *services.SessionService, scores *services.ScoreService, leaderboard *services.LeaderboardService, limiter *middleware.RateLimiter, log logrus.FieldLogger) *Handler {
	return &Handler{
		sessions:    sessions,
		scores:      scores,
		leaderboard: leaderboard,
		limiter:     limiter,
		log:         log,
	}
}

// RegisterRoutes registers all routes related to game sessions
// r: the RouterGroup to which the routes are added
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	sessions := r.Group("/sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.POST("/validate", h.ValidateSession)
		sessions.GET("/:id", h.GetSession)
		sessions.DELETE("/:id", h.DeleteSession)
	}

	r.POST("/scores", middleware.RateLimiterMiddleware(h.limiter), h.SubmitScore)
}
