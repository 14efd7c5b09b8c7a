package testutil

import (
	"github.com/caarlos0/env/v11"

	"survivalboard/config"
)

// Rules returns the session rules a process gets with no environment set
func Rules() config.SessionRules {
	return defaults[config.SessionRules]()
}

// RateLimit returns the default submit rate limit
func RateLimit() config.RateLimitConfig {
	return defaults[config.RateLimitConfig]()
}

func defaults[T any]() T {
	var v T
	if err := env.ParseWithOptions(&v, env.Options{Environment: map[string]string{}}); err != nil {
		panic(err)
	}
	return v
}
