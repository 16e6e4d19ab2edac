package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sharepoint_portal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sharepoint_portal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	workflowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sharepoint_portal_workflow_transitions_total",
			Help: "SharePoint workflow operations applied, by action",
		},
		[]string{"action"},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sharepoint_portal_notifications_total",
			Help: "Notification attempts by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	overdueSharePoints = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sharepoint_portal_overdue_sharepoints",
			Help: "Open SharePoints past their deadline at the last sweep",
		},
	)
)

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, endpoint string, statusCode int, durationSeconds float64) {
	status := "unknown"
	if statusCode >= 200 && statusCode < 300 {
		status = "2xx"
	} else if statusCode >= 300 && statusCode < 400 {
		status = "3xx"
	} else if statusCode >= 400 && statusCode < 500 {
		status = "4xx"
	} else if statusCode >= 500 {
		status = "5xx"
	}

	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordTransition counts a successful workflow operation.
func RecordTransition(action string) {
	workflowTransitions.WithLabelValues(action).Inc()
}

// RecordNotification counts a notification attempt.
func RecordNotification(kind string, success bool) {
	notificationsTotal.WithLabelValues(kind, strconv.FormatBool(success)).Inc()
}

// SetOverdue publishes the overdue count found by the deadline worker.
func SetOverdue(count int) {
	overdueSharePoints.Set(float64(count))
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RecordHTTPRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start).Seconds())
	}
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
