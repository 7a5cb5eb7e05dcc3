// Package observe exposes Prometheus metrics
package observe

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TotalReq = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gestionbc_requests_total",
		Help: "Total HTTP requests",
	})
	FailReq = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gestionbc_requests_failed",
		Help: "HTTP requests answered with a 5xx status",
	})
	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gestionbc_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "code"})
	// ViewLoads counts data store loads per screen and outcome (ok, error, stale).
	ViewLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gestionbc_view_loads_total",
		Help: "Data store loads of the tabular views",
	}, []string{"screen", "outcome"})
)

// Register must be called once from main.
func Register() {
	prometheus.MustRegister(TotalReq, FailReq, httpRequestDuration, ViewLoads)
}

// Handler returns the /metrics handler.
func Handler() http.Handler { return promhttp.Handler() }

// PrometheusMiddleware records one latency sample per request, labelled with the
// route template rather than the raw path.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		TotalReq.Inc()
		if status >= http.StatusInternalServerError {
			FailReq.Inc()
		}
		httpRequestDuration.WithLabelValues(path, c.Request.Method, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	}
}
