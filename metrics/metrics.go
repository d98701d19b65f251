package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Technical metrics
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	ResponseTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_time_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5},
	}, []string{"method", "path"})

	// Business metrics
	DeliveriesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deliveries_created_total",
		Help: "Total number of deliveries registered",
	})

	DeliveriesUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deliveries_updated_total",
		Help: "Total number of deliveries updated",
	})

	DeliveriesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deliveries_deleted_total",
		Help: "Total number of deliveries deleted",
	})

	ReportsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "delivery_reports_built_total",
		Help: "Total number of range reports computed",
	})

	DigestsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_digests_sent_total",
		Help: "Daily digest messages by outcome",
	}, []string{"status"})
)

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()

		RequestsTotal.With(prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(status) + " " + http.StatusText(status),
		}).Inc()

		ResponseTime.With(prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
		}).Observe(time.Since(start).Seconds())
	}
}
