package sessions

import (
	"time"

	"survivalboard/models"
)

// CreateSessionRequest is the document a client proposes. Omitted timestamps
// are filled with the server's commit time; any value sent is checked as-is.
type CreateSessionRequest struct {
	SessionID  string     `json:"sessionId" example:"game_1773489600000_k3j9x2"`
	PlayerName string     `json:"playerName" example:"Alice"`
	Status     string     `json:"status,omitempty" example:"active"`
	StartTime  *time.Time `json:"startTime,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	FinalTime  *float64   `json:"finalTime,omitempty"`
}

func (r CreateSessionRequest) document() models.GameSession {
	doc := models.GameSession{
		SessionID:  r.SessionID,
		PlayerName: r.PlayerName,
		Status:     models.SessionStatus(r.Status),
		EndTime:    r.EndTime,
		FinalTime:  r.FinalTime,
	}
	if doc.Status == "" {
		doc.Status = models.StatusActive
	}
	if r.StartTime != nil {
		doc.StartTime = *r.StartTime
	}
	if r.CreatedAt != nil {
		doc.CreatedAt = *r.CreatedAt
	}
	return doc
}

type ValidateSessionRequest struct {
	SessionID  string `json:"sessionId"`
	PlayerName string `json:"playerName"`
}

type ValidateSessionResponse struct {
	Valid bool `json:"valid"`
}

type SubmitScoreRequest struct {
	SessionID  string  `json:"sessionId" example:"game_1773489600000_k3j9x2"`
	PlayerName string  `json:"playerName" example:"Alice"`
	FinalTime  float64 `json:"finalTime" example:"42.7"`
}
