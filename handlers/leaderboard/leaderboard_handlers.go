package leaderboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"survivalboard/realtime"
	"survivalboard/services"
	"survivalboard/utils/response"
)

// LeaderboardResponse is the current top-N view
type LeaderboardResponse struct {
	Entries []services.LeaderboardEntry `json:"entries"`
}

// Handler serves the leaderboard read and its websocket stream
type Handler struct {
	leaderboard *services.LeaderboardService
	hub         *realtime.Hub
	upgrader    websocket.Upgrader
	log         logrus.FieldLogger
}

func NewHandler(leaderboard *services.LeaderboardService, hub *realtime.Hub, log logrus.FieldLogger) *Handler {
	return &Handler{
		leaderboard: leaderboard,
		hub:         hub,
		upgrader: websocket.Upgrader{
			// CORS middleware already restricts browser origins for this API
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// RegisterRoutes registers all routes related to the leaderboard
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/leaderboard", h.GetLeaderboard)
	r.GET("/leaderboard/ws", h.LeaderboardWebSocket)
}

// GetLeaderboard returns the best finished score per player
// @Summary Get the leaderboard
// @Description Best finished score per player, highest first
// @Tags Leaderboard
// @Produce json
// @Success 200 {object} LeaderboardResponse
// @Failure 500 {object} response.ErrorBody
// @Router /leaderboard [get]
func (h *Handler) GetLeaderboard(c *gin.Context) {
	entries, err := h.leaderboard.Top(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("leaderboard read failed")
		response.FromStatus(c, err)
		return
	}
	response.Success(c, http.StatusOK, LeaderboardResponse{Entries: entries})
}

// LeaderboardWebSocket streams leaderboard snapshots
// @Summary Watch the leaderboard
// @Description Upgrades to a websocket that receives the current leaderboard, then every change
// @Tags Leaderboard
// @Router /leaderboard/ws [get]
func (h *Handler) LeaderboardWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	client := h.hub.Register(conn)
	defer h.hub.Unregister(client)

	entries, err := h.leaderboard.Top(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("initial leaderboard snapshot failed")
		return
	}
	if !h.hub.Send(client, realtime.LeaderboardUpdate{Type: "snapshot", Entries: entries}) {
		return
	}

	// Clients only listen; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
