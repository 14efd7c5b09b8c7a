package sessions

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"survivalboard/utils/response"
)

// CreateSession proposes a new game session document
// @Summary Open a game session
// @Description Proposes a new session document. The access policy only admits active sessions with server-assigned timestamps.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param session body CreateSessionRequest true "Proposed session document"
// @Success 201 {object} models.GameSession
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	session, err := h.sessions.Create(c.Request.Context(), req.document())
	if err != nil {
		response.FromStatus(c, err)
		return
	}
	response.Success(c, http.StatusCreated, session)
}

// GetSession reads one session document
// @Summary Get a game session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.GameSession
// @Failure 404 {object} response.ErrorBody
// @Router /sessions/{id} [get]
func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromStatus(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// DeleteSession proposes removing a session. Sessions are never deleted by clients.
// @Summary Delete a game session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 204
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /sessions/{id} [delete]
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromStatus(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ValidateSession reports whether a session is still active
// @Summary Validate a game session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param request body ValidateSessionRequest true "Session to check"
// @Success 200 {object} ValidateSessionResponse
// @Failure 400 {object} response.ErrorBody
// @Router /sessions/validate [post]
func (h *Handler) ValidateSession(c *gin.Context) {
	var req ValidateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	valid, err := h.sessions.Validate(c.Request.Context(), req.SessionID, req.PlayerName)
	if err != nil {
		response.FromStatus(c, err)
		return
	}
	response.Success(c, http.StatusOK, ValidateSessionResponse{Valid: valid})
}
