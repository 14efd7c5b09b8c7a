// Package policy holds the session-transition predicates shared by every defense layer,
// and the Enforcer that gates proposed writes at the storage boundary.
package policy

import (
	"regexp"
	"time"
	"unicode/utf8"

	"survivalboard/config"
	"survivalboard/models"
)

const maxSessionIDLength = 64

var sessionIDPattern = regexp.MustCompile(`^game_[0-9]+_[a-z0-9]+$`)

// Rules evaluates the protocol bounds. The Enforcer, the write auditor and the
// score service all call the same predicates so the layers cannot drift apart.
type Rules struct {
	cfg config.SessionRules
}

func NewRules(cfg config.SessionRules) Rules {
	return Rules{cfg: cfg}
}

// Config returns the bounds the rules were built with
func (r Rules) Config() config.SessionRules {
	return r.cfg
}

// ValidSessionID reports whether id has the game_<timestamp>_<random> shape
func (r Rules) ValidSessionID(id string) bool {
	return len(id) <= maxSessionIDLength && sessionIDPattern.MatchString(id)
}

// ValidPlayerName checks the name length in characters, not bytes
func (r Rules) ValidPlayerName(name string) bool {
	n := utf8.RuneCountInString(name)
	return utf8.ValidString(name) && n >= r.cfg.PlayerNameMin && n <= r.cfg.PlayerNameMax
}

// FinalTimeInRange reports whether 0 < finalTime <= MaxFinalTime. NaN is out of range.
func (r Rules) FinalTimeInRange(finalTime float64) bool {
	return finalTime > 0 && finalTime <= r.cfg.MaxFinalTime
}

// DurationPlausible reports whether end-start lies in [MinDuration, MaxDuration]
func (r Rules) DurationPlausible(start, end time.Time) bool {
	elapsed := end.Sub(start)
	return elapsed >= r.cfg.MinDuration && elapsed <= r.cfg.MaxDuration
}

// CanTransition is the single forward-transition law: active -> finished | abandoned
func CanTransition(from, to models.SessionStatus) bool {
	return from == models.StatusActive && to.Terminal()
}

// CheckShape verifies the per-status field invariants of a stored record.
// It returns an empty string when the record is consistent.
func (r Rules) CheckShape(s models.GameSession) string {
	switch s.Status {
	case models.StatusActive:
		if s.EndTime != nil || s.FinalTime != nil {
			return "active session carries endTime or finalTime"
		}
	case models.StatusFinished:
		if s.FinalTime == nil || !r.FinalTimeInRange(*s.FinalTime) {
			return "finished session has finalTime out of range"
		}
		if s.EndTime == nil {
			return "finished session has no endTime"
		}
		if !r.DurationPlausible(s.StartTime, *s.EndTime) {
			return "finished session has implausible duration"
		}
	case models.StatusAbandoned:
		if s.FinalTime != nil {
			return "abandoned session carries finalTime"
		}
		if s.EndTime == nil {
			return "abandoned session has no endTime"
		}
	default:
		return "unknown status"
	}
	return ""
}
