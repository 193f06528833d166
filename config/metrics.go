package config

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so routers built in tests do not collide.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter           *prometheus.CounterVec
	RequestDurationHistogram *prometheus.HistogramVec
	ReservationsCreated      prometheus.Counter
	FeedbackSubmitted        prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDurationHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		ReservationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reservations_created_total",
			Help: "Reservations created through either surface",
		}),
		FeedbackSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedback_submitted_total",
			Help: "Feedback entries accepted",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCounter,
		m.RequestDurationHistogram,
		m.ReservationsCreated,
		m.FeedbackSubmitted,
	)
	return m
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestCounter.WithLabelValues(c.Request.Method, path, status).Inc()
		m.RequestDurationHistogram.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
