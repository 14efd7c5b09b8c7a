package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	PolicyStrict = "strict"
	PolicyOpen   = "open"
)

// Config is the process configuration, read once from the environment (and an optional .env file)
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`

	DBDriver         string `env:"DB_DRIVER" envDefault:"postgres"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"survivalboard"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"survivalboard"`
	SQLitePath       string `env:"SQLITE_PATH" envDefault:"survivalboard.db"`

	RedisEnabled  bool   `env:"REDIS_ENABLED" envDefault:"true"`
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	AdminJWTSecret string   `env:"ADMIN_JWT_SECRET"`
	AccessPolicy   string   `env:"ACCESS_POLICY" envDefault:"strict"`
	CORSOrigins    []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Rules     SessionRules
	RateLimit RateLimitConfig
}

// Load reads the .env file if present, then parses the environment into a Config
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the services cannot run with
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported GIN_MODE %q", c.GinMode)
	}
	switch c.AccessPolicy {
	case PolicyStrict, PolicyOpen:
	default:
		return fmt.Errorf("unsupported ACCESS_POLICY %q", c.AccessPolicy)
	}

	r := c.Rules
	if r.MaxFinalTime <= 0 {
		return fmt.Errorf("SESSION_MAX_FINAL_TIME must be positive")
	}
	if r.MinDuration < 0 || r.MaxDuration < r.MinDuration {
		return fmt.Errorf("session duration bounds are inverted: [%s, %s]", r.MinDuration, r.MaxDuration)
	}
	if r.PlayerNameMin < 1 || r.PlayerNameMax < r.PlayerNameMin {
		return fmt.Errorf("player name bounds are inverted: [%d, %d]", r.PlayerNameMin, r.PlayerNameMax)
	}
	if r.StaleAfter <= 0 || r.ReapInterval <= 0 {
		return fmt.Errorf("SESSION_STALE_AFTER and REAPER_INTERVAL must be positive")
	}
	if r.LeaderboardSize < 1 {
		return fmt.Errorf("LEADERBOARD_SIZE must be at least 1")
	}
	if c.RateLimit.Rate < 1 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("SUBMIT_RATE and SUBMIT_BURST must be at least 1")
	}
	return nil
}

// NewLogger builds the process logger from the configured level and format
func NewLogger(cfg *Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}
