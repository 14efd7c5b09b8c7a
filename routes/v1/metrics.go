package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsHandler serves the default registry, which holds every survivalboard_* collector.
// A single failing collector still yields the remaining series.
var metricsHandler = promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
	ErrorHandling:     promhttp.ContinueOnError,
	EnableOpenMetrics: true,
})

// @Summary Prometheus metrics
// @Description Session, submission, auditor, reaper and system metrics in exposition format
// @Tags App
// @Produce plain
// @Success 200 {string} string
// @Router /metrics [get]
func scrapeMetrics(c *gin.Context) {
	metricsHandler.ServeHTTP(c.Writer, c.Request)
}

// RegisterMetricsRoutes exposes the scrape endpoint
func RegisterMetricsRoutes(r *gin.RouterGroup) {
	r.GET("/metrics", scrapeMetrics)
}
