package policy

import (
	"time"

	"survivalboard/models"
)

// Enforcer decides whether a proposed write may be committed. It runs inside the
// store's write transaction, has no side effects and never sees client clocks:
// writeTime is the store's authoritative commit time.
type Enforcer interface {
	AllowCreate(proposed models.GameSession, writeTime time.Time) error
	AllowUpdate(existing, proposed models.GameSession, writeTime time.Time) error
	AllowDelete(existing models.GameSession) error
}

// Strict is the production rule set
type Strict struct {
	rules Rules
}

func NewStrict(rules Rules) *Strict {
	return &Strict{rules: rules}
}

func (p *Strict) AllowCreate(s models.GameSession, writeTime time.Time) error {
	switch {
	case s.Status != models.StatusActive:
		return deny(OpCreate, s.SessionID, "status must be active")
	case s.FinalTime != nil || s.EndTime != nil:
		return deny(OpCreate, s.SessionID, "finalTime and endTime must be null")
	case !s.StartTime.Equal(writeTime) || !s.CreatedAt.Equal(writeTime):
		return deny(OpCreate, s.SessionID, "startTime and createdAt must be the server timestamp")
	case !p.rules.ValidPlayerName(s.PlayerName):
		return deny(OpCreate, s.SessionID, "playerName must be 1-20 characters")
	case !p.rules.ValidSessionID(s.SessionID):
		return deny(OpCreate, s.SessionID, "sessionId does not match game_<timestamp>_<random>")
	}
	return nil
}

func (p *Strict) AllowUpdate(existing, s models.GameSession, writeTime time.Time) error {
	if existing.Status != models.StatusActive {
		return deny(OpUpdate, existing.SessionID, "session is not active")
	}
	if !CanTransition(existing.Status, s.Status) {
		return deny(OpUpdate, existing.SessionID, "status must become finished or abandoned")
	}
	if s.SessionID != existing.SessionID ||
		s.PlayerName != existing.PlayerName ||
		!s.StartTime.Equal(existing.StartTime) ||
		!s.CreatedAt.Equal(existing.CreatedAt) {
		return deny(OpUpdate, existing.SessionID, "immutable fields changed")
	}
	if s.EndTime == nil || !s.EndTime.Equal(writeTime) {
		return deny(OpUpdate, existing.SessionID, "endTime must be the server timestamp")
	}

	switch s.Status {
	case models.StatusFinished:
		if s.FinalTime == nil || !p.rules.FinalTimeInRange(*s.FinalTime) {
			return deny(OpUpdate, existing.SessionID, "finalTime out of range")
		}
		if !p.rules.DurationPlausible(existing.StartTime, writeTime) {
			return deny(OpUpdate, existing.SessionID, "implausible session duration")
		}
	case models.StatusAbandoned:
		if s.FinalTime != nil {
			return deny(OpUpdate, existing.SessionID, "abandoned session cannot carry finalTime")
		}
	}
	return nil
}

// AllowDelete always denies: finishing and reaping are status transitions, and the
// records are kept as the audit trail.
func (p *Strict) AllowDelete(existing models.GameSession) error {
	return deny(OpDelete, existing.SessionID, "sessions cannot be deleted")
}

// Open admits every write. It stands for a store deployed without its rules; the
// write auditor is then the only gate.
type Open struct{}

func (Open) AllowCreate(models.GameSession, time.Time) error { return nil }

func (Open) AllowUpdate(models.GameSession, models.GameSession, time.Time) error { return nil }

func (Open) AllowDelete(models.GameSession) error { return nil }
