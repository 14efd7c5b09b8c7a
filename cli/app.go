package cli

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"survivalboard/config"
	"survivalboard/database"
	_ "survivalboard/docs"
	"survivalboard/handlers/admin"
	"survivalboard/handlers/leaderboard"
	"survivalboard/handlers/sessions"
	"survivalboard/middleware"
	"survivalboard/policy"
	"survivalboard/realtime"
	v1 "survivalboard/routes/v1"
	"survivalboard/services"
	"survivalboard/store"
)

// App holds the wired services of one process
type App struct {
	Config *config.Config
	Log    *logrus.Logger
	DB     *gorm.DB
	Redis  *redis.Client // nil when the cache is disabled or unreachable

	Store       *store.SessionStore
	Rules       policy.Rules
	Sessions    *services.SessionService
	Scores      *services.ScoreService
	Reaper      *services.Reaper
	Leaderboard *services.LeaderboardService
	Auditor     *services.Auditor
}

// NewEnforcer returns the access policy named by ACCESS_POLICY
func NewEnforcer(cfg *config.Config, rules policy.Rules) policy.Enforcer {
	if cfg.AccessPolicy == config.PolicyOpen {
		return policy.Open{}
	}
	return policy.NewStrict(rules)
}

// NewApp opens storage and builds every service
func NewApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return nil, err
	}
	return newApp(ctx, cfg, log, db), nil
}

func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger, db *gorm.DB, opts ...store.Option) *App {
	rules := policy.NewRules(cfg.Rules)
	enforcer := NewEnforcer(cfg, rules)
	if cfg.AccessPolicy == config.PolicyOpen {
		log.Warn("access policy is open, only the write auditor guards the session store")
	}

	a := &App{Config: cfg, Log: log, DB: db, Rules: rules}
	a.Store = store.New(db, enforcer, append([]store.Option{store.WithLogger(log)}, opts...)...)

	var cache services.LeaderboardCache
	if cfg.RedisEnabled {
		client, err := database.InitRedis(ctx, cfg)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, leaderboard cache disabled")
		} else {
			a.Redis = client
			cache = services.NewRedisLeaderboardCache(client, cfg.Rules.LeaderboardCacheTTL)
		}
	}

	a.Sessions = services.NewSessionService(a.Store, log.WithField("component", "sessions"))
	a.Scores = services.NewScoreService(a.Store, rules, log.WithField("component", "scores"))
	a.Reaper = services.NewReaper(a.Store, cfg.Rules, log.WithField("component", "reaper"))
	a.Leaderboard = services.NewLeaderboardService(a.Store, cache, cfg.Rules.LeaderboardSize, log.WithField("component", "leaderboard"))
	a.Auditor = services.NewAuditor(rules, a.Store, log.WithField("component", "auditor"))
	return a
}

// Router builds the HTTP surface
func (a *App) Router(hub *realtime.Hub, limiter *middleware.RateLimiter) *gin.Engine {
	gin.SetMode(a.Config.GinMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(a.Log.WithField("component", "http")))
	r.Use(middleware.CORS(a.Config.CORSOrigins))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1.Register(r, v1.Handlers{
		Sessions:    sessions.NewHandler(a.Sessions, a.Scores, a.Leaderboard, limiter, a.Log.WithField("component", "sessions")),
		Leaderboard: leaderboard.NewHandler(a.Leaderboard, hub, a.Log.WithField("component", "leaderboard")),
		Admin:       admin.NewHandler(a.Sessions, a.Reaper, a.Config.AdminJWTSecret, a.Log.WithField("component", "admin")),
	})
	return r
}

// Close releases the database and redis connections
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.WithError(err).Warn("closing redis failed")
		}
	}
	if err := database.Close(a.DB); err != nil {
		a.Log.WithError(err).Warn("closing database failed")
	}
}
