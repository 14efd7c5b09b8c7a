package models

import "time"

// SessionStatus is the lifecycle state of a game session
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusFinished  SessionStatus = "finished"
	StatusAbandoned SessionStatus = "abandoned"
)

// Terminal reports whether no further transition is allowed out of the status
func (s SessionStatus) Terminal() bool {
	return s == StatusFinished || s == StatusAbandoned
}

// Valid reports whether s is one of the known statuses
func (s SessionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusFinished, StatusAbandoned:
		return true
	}
	return false
}

// GameSession represents one attempt at the game, from the moment the client opens it
// until it is finished through the score service or abandoned by the reaper.
// Zero-valued StartTime/CreatedAt (and a non-nil zero EndTime) are resolved to the
// store's write-time clock on commit.
type GameSession struct {
	SessionID  string        `gorm:"type:varchar(64);primaryKey;column:session_id" json:"sessionId"`
	PlayerName string        `gorm:"type:varchar(80);not null;column:player_name" json:"playerName"`
	Status     SessionStatus `gorm:"type:varchar(16);not null;index;column:status" json:"status"`
	StartTime  time.Time     `gorm:"not null;column:start_time" json:"startTime"`
	EndTime    *time.Time    `gorm:"column:end_time" json:"endTime"`
	FinalTime  *float64      `gorm:"column:final_time" json:"finalTime"`
	CreatedAt  time.Time     `gorm:"not null;autoCreateTime:false;column:created_at" json:"createdAt"`
	Revision   int64         `gorm:"not null;default:0;column:revision" json:"-"`
}

// TableName pins the collection name
func (GameSession) TableName() string {
	return "game_sessions"
}

// Clone returns a deep copy so snapshots never share the nullable fields
func (s GameSession) Clone() GameSession {
	c := s
	if s.EndTime != nil {
		t := *s.EndTime
		c.EndTime = &t
	}
	if s.FinalTime != nil {
		f := *s.FinalTime
		c.FinalTime = &f
	}
	return c
}

// SameContent compares the document fields, ignoring the storage revision
func (s GameSession) SameContent(o GameSession) bool {
	return s.SessionID == o.SessionID &&
		s.PlayerName == o.PlayerName &&
		s.Status == o.Status &&
		s.StartTime.Equal(o.StartTime) &&
		s.CreatedAt.Equal(o.CreatedAt) &&
		sameTime(s.EndTime, o.EndTime) &&
		sameFloat(s.FinalTime, o.FinalTime)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func sameFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
