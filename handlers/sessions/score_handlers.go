package sessions

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"survivalboard/services"
	"survivalboard/utils/response"
)

// SubmitScore finishes a session with the client-reported survival time
// @Summary Submit a score
// @Description Validates ownership, bounds and elapsed time, then finishes the session. The leaderboard is refreshed on success.
// @Tags Scores
// @Accept json
// @Produce json
// @Param request body SubmitScoreRequest true "Score submission"
// @Success 200 {object} services.SubmitResult
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 412 {object} response.ErrorBody
// @Failure 429 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /scores [post]
func (h *Handler) SubmitScore(c *gin.Context) {
	var req SubmitScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	ctx := c.Request.Context()
	result, err := h.scores.Submit(ctx, services.SubmitRequest{
		SessionID:  req.SessionID,
		PlayerName: req.PlayerName,
		FinalTime:  req.FinalTime,
	})
	if err != nil {
		response.FromStatus(c, err)
		return
	}

	// The score is committed; a failed refresh only delays the new view
	if _, err := h.leaderboard.Refresh(ctx); err != nil {
		h.log.WithError(err).Warn("leaderboard refresh after submission failed")
	}
	response.Success(c, http.StatusOK, result)
}
