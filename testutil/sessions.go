package testutil

import (
	"fmt"
	"time"

	"survivalboard/models"
)

// SessionID builds a well-formed game_<timestamp>_<random> id
func SessionID(n int) string {
	return fmt.Sprintf("game_%d_r%d", Epoch.UnixMilli()+int64(n), n)
}

// NewSession is the document a well-behaved client proposes: active, no end
// or final time, and server-assigned timestamps.
func NewSession(id, player string) models.GameSession {
	return models.GameSession{
		SessionID:  id,
		PlayerName: player,
		Status:     models.StatusActive,
	}
}

// Finished builds an already-finished document, as a tampering client would send it
func Finished(id, player string, start time.Time, elapsed time.Duration, finalTime float64) models.GameSession {
	end := start.Add(elapsed)
	return models.GameSession{
		SessionID:  id,
		PlayerName: player,
		Status:     models.StatusFinished,
		StartTime:  start,
		CreatedAt:  start,
		EndTime:    &end,
		FinalTime:  &finalTime,
	}
}
