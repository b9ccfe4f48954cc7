// Package metrics exposes Prometheus metrics for the chat backend.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the backend's Prometheus collectors.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	StreamEventsTotal   *prometheus.CounterVec
	LLMRequestsTotal    *prometheus.CounterVec
}

// New creates and registers the collectors against reg. Tests pass a
// fresh registry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backend_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		StreamEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_stream_events_total",
				Help: "Outbound chat stream events by kind",
			},
			[]string{"kind"},
		),
		LLMRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_llm_requests_total",
				Help: "Upstream LLM calls by mode and outcome",
			},
			[]string{"mode", "status"},
		),
	}
}

// Middleware records request counts and latencies per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
	}
}

// ObserveStreamEvent counts one outbound stream event.
func (m *Metrics) ObserveStreamEvent(kind string) {
	m.StreamEventsTotal.WithLabelValues(kind).Inc()
}

// ObserveLLMRequest counts one upstream LLM call.
func (m *Metrics) ObserveLLMRequest(mode string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.LLMRequestsTotal.WithLabelValues(mode, status).Inc()
}
