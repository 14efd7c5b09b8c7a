package config

import "time"

// SessionRules holds the bounds every layer of the session protocol validates against
type SessionRules struct {
	MaxFinalTime        float64       `env:"SESSION_MAX_FINAL_TIME" envDefault:"300"` // Longest survival time accepted, in seconds (inclusive)
	MinDuration         time.Duration `env:"SESSION_MIN_DURATION" envDefault:"1s"`    // Shortest plausible start-to-end duration
	MaxDuration         time.Duration `env:"SESSION_MAX_DURATION" envDefault:"10m"`   // Longest plausible start-to-end duration
	PlayerNameMin       int           `env:"SESSION_PLAYER_NAME_MIN" envDefault:"1"`
	PlayerNameMax       int           `env:"SESSION_PLAYER_NAME_MAX" envDefault:"20"`
	StaleAfter          time.Duration `env:"SESSION_STALE_AFTER" envDefault:"1h"` // Age after which an active session is abandoned
	ReapInterval        time.Duration `env:"REAPER_INTERVAL" envDefault:"1h"`
	LeaderboardSize     int           `env:"LEADERBOARD_SIZE" envDefault:"3"`
	LeaderboardCacheTTL time.Duration `env:"LEADERBOARD_CACHE_TTL" envDefault:"30s"`
}

// Rate limit configuration for score submissions
type RateLimitConfig struct {
	Rate  int `env:"SUBMIT_RATE" envDefault:"30"`  // Tokens refilled per minute
	Burst int `env:"SUBMIT_BURST" envDefault:"10"` // Bucket capacity
}
