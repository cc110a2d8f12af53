// path: metrics/metrics.go
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for request handling and lifecycle transitions
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_transitions_total",
			Help: "Status transitions applied, by history action type",
		},
		[]string{"action"},
	)

	DenialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_denials_total",
			Help: "Updates rejected by the lifecycle rules, by error kind",
		},
		[]string{"kind"},
	)

	HistoryWriteFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "history_write_failures_total",
			Help: "History entries that could not be written after a successful update",
		},
	)

	RequestsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aid_requests_created_total",
			Help: "Aid requests accepted from citizens",
		},
	)
)

// Register registers all metrics with r.
func Register(r prometheus.Registerer) {
	r.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		TransitionsTotal,
		DenialsTotal,
		HistoryWriteFailuresTotal,
		RequestsCreatedTotal,
	)
}

// Middleware records the request counter and latency histogram. Routes are
// labelled by their pattern so ids do not blow up cardinality.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		HTTPRequestDuration.WithLabelValues(route, c.Method()).Observe(time.Since(start).Seconds())
		HTTPRequestsTotal.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		return err
	}
}
