// Package metrics exposes Prometheus counters for the BuildForge workflow.
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

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LoginsTotal       *prometheus.CounterVec
	PostsCreatedTotal *prometheus.CounterVec
	IdeasReviewed     *prometheus.CounterVec
	MessagesSent      prometheus.Counter

	WSConnectionsActive prometheus.Gauge
	PollersActive       prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(namespace string, reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "path"}),
		LoginsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by entry point and outcome",
		}, []string{"method", "outcome"}),
		PostsCreatedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_created_total",
			Help:      "Posts created by kind",
		}, []string{"kind"}),
		IdeasReviewed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ideas_reviewed_total",
			Help:      "Idea reviews by outcome",
		}, []string{"outcome"}),
		MessagesSent: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Direct messages sent",
		}),
		WSConnectionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections_active",
			Help:      "Open WebSocket connections",
		}),
		PollersActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "conversation_pollers_active",
			Help:      "Running conversation pollers",
		}),
		gatherer: reg,
	}
}

// Login records a login attempt.
func (m *Metrics) Login(method string, ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.LoginsTotal.WithLabelValues(method, outcome).Inc()
}

// PostCreated records a new post.
func (m *Metrics) PostCreated(kind string) {
	if m == nil {
		return
	}
	m.PostsCreatedTotal.WithLabelValues(kind).Inc()
}

// IdeaReviewed records an approval or rejection.
func (m *Metrics) IdeaReviewed(outcome string) {
	if m == nil {
		return
	}
	m.IdeasReviewed.WithLabelValues(outcome).Inc()
}

// MessageSent records a direct message.
func (m *Metrics) MessageSent() {
	if m == nil {
		return
	}
	m.MessagesSent.Inc()
}

// ConnOpened and ConnClosed track WebSocket connections.
func (m *Metrics) ConnOpened() {
	if m != nil {
		m.WSConnectionsActive.Inc()
	}
}

func (m *Metrics) ConnClosed() {
	if m != nil {
		m.WSConnectionsActive.Dec()
	}
}

// PollerStarted and PollerStopped track conversation pollers.
func (m *Metrics) PollerStarted() {
	if m != nil {
		m.PollersActive.Inc()
	}
}

func (m *Metrics) PollerStopped() {
	if m != nil {
		m.PollersActive.Dec()
	}
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Status(http.StatusNotFound) }
	}
	h := promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
