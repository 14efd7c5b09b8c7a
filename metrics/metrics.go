package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and path
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survivalboard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "survivalboard_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	// RequestInProgress counts HTTP requests currently being processed
	RequestInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "survivalboard_http_requests_in_progress",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method", "path"},
	)

	// RateLimiterRejections counts rejected score submissions
	RateLimiterRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survivalboard_rate_limiter_rejections_total",
			Help: "Total number of requests rejected by rate limiter",
		},
		[]string{"route"},
	)

	// DatabaseOperationDuration measures session store operation duration
	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "survivalboard_db_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	// PolicyDenials counts writes the access policy rejected
	PolicyDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survivalboard_policy_denials_total",
			Help: "Total number of writes denied by the access policy",
		},
		[]string{"op"},
	)

	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "survivalboard_sessions_created_total",
			Help: "Total number of game sessions created",
		},
	)

	// ScoreSubmissions counts submission outcomes by status code ("ok" on success)
	ScoreSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survivalboard_score_submissions_total",
			Help: "Total number of score submissions by outcome",
		},
		[]string{"code"},
	)

	// AuditorCompensations counts purges and reverts issued by the write auditor
	AuditorCompensations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survivalboard_auditor_compensations_total",
			Help: "Total number of compensating writes issued by the auditor",
		},
		[]string{"kind", "result"},
	)

	ReaperAbandoned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "survivalboard_reaper_abandoned_total",
			Help: "Total number of stale sessions marked abandoned",
		},
	)

	ReaperSweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "survivalboard_reaper_sweep_duration_seconds",
			Help:    "Reaper sweep duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// CacheHits counts leaderboard cache hits
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "survivalboard_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	// CacheMisses counts leaderboard cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "survivalboard_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// WebsocketClients tracks connected leaderboard watchers
	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "survivalboard_websocket_clients",
			Help: "Number of connected leaderboard websocket clients",
		},
	)

	// MemoryStats tracks memory usage stats
	MemoryStats = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "survivalboard_memory_stats_bytes",
			Help: "Memory statistics in bytes",
		},
		[]string{"type"},
	)

	// GoroutineCount tracks the number of goroutines
	GoroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "survivalboard_goroutine_count",
			Help: "Number of goroutines",
		},
	)

	// SystemCPUUsage tracks CPU usage percentage
	SystemCPUUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "survivalboard_system_cpu_usage_percent",
			Help: "CPU usage percentage by core",
		},
		[]string{"core"},
	)

	// SystemDiskUsage tracks disk usage
	SystemDiskUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "survivalboard_system_disk_usage_bytes",
			Help: "Disk usage statistics in bytes",
		},
		[]string{"mountpoint", "type"}, // type is "used", "free" or "total"
	)

	// SystemLoadAverage tracks system load averages
	SystemLoadAverage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "survivalboard_system_load_average",
			Help: "System load average",
		},
		[]string{"period"},
	)
)

// RecordDBOperation records the duration of a database operation
func RecordDBOperation(operation string, table string, startTime time.Time) {
	duration := time.Since(startTime).Seconds()
	DatabaseOperationDuration.WithLabelValues(operation, table).Observe(duration)
}
