package store

import (
	"time"

	"survivalboard/models"
)

// Clock is the store's authoritative write-time source. Every timestamp that the
// protocol trusts is read from it at commit, never from the client.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// Now truncates to microseconds so values survive a postgres round trip unchanged
func (systemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// SystemClock reads the host wall clock
var SystemClock Clock = systemClock{}

// ServerTimestamp is the sentinel a writer places in a timestamp field to ask the
// store for its commit time.
func ServerTimestamp() *time.Time {
	return &time.Time{}
}

func resolveServerTimestamps(s *models.GameSession, now time.Time) {
	if s.StartTime.IsZero() {
		s.StartTime = now
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.EndTime != nil && s.EndTime.IsZero() {
		t := now
		s.EndTime = &t
	}
}
