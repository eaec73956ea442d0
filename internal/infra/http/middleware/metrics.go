package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bunnystock/leaddesk/internal/entity"
	"github.com/bunnystock/leaddesk/internal/usecase"
)

// Metrics owns the HTTP and lead collectors. It implements usecase.Metrics
// and the backlog gauge.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	activeConnections   prometheus.Gauge

	leadsCreated   prometheus.Counter
	notifications  *prometheus.CounterVec
	statusUpdates  *prometheus.CounterVec
	queryFallbacks prometheus.Counter
	leadsByStatus  *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		activeConnections: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_connections",
				Help: "Number of active HTTP connections",
			},
		),
		leadsCreated: f.NewCounter(
			prometheus.CounterOpts{
				Name: "leads_created_total",
				Help: "Total number of consultation leads stored",
			},
		),
		notifications: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_notifications_total",
				Help: "Lead notification attempts by kind and result",
			},
			[]string{"kind", "result"},
		),
		statusUpdates: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_status_updates_total",
				Help: "Successful lead status updates by target status",
			},
			[]string{"status"},
		),
		queryFallbacks: f.NewCounter(
			prometheus.CounterOpts{
				Name: "lead_query_fallbacks_total",
				Help: "Lead list queries served in id order after the time-ordered query failed",
			},
		),
		leadsByStatus: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "leads_by_status",
				Help: "Current number of leads per status",
			},
			[]string{"status"},
		),
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware records request counts and latency labelled by route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.activeConnections.Inc()
		defer m.activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		m.httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps label cardinality bounded: lead ids never become labels.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

var _ usecase.Metrics = (*Metrics)(nil)

func (m *Metrics) LeadCreated() {
	m.leadsCreated.Inc()
}

func (m *Metrics) Notification(kind string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.notifications.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) StatusChanged(status entity.Status) {
	m.statusUpdates.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) QueryFallback() {
	m.queryFallbacks.Inc()
}

func (m *Metrics) SetLeadsByStatus(status entity.Status, count int) {
	m.leadsByStatus.WithLabelValues(string(status)).Set(float64(count))
}
