// Package testutil provides deterministic fixtures shared by package tests.
package testutil

import (
	"sync"
	"time"
)

// Epoch is the instant every test clock starts at unless told otherwise
var Epoch = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// Clock is a manually advanced clock. It satisfies store.Clock.
//
// Thread-safety: all methods are safe for concurrent use.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
