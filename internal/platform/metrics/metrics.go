package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var latencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// Bootstrap outcomes recorded once per request by the session middleware.
const (
	BootstrapAnonymous = "anonymous"
	BootstrapRestored  = "restored"
	BootstrapRefreshed = "refreshed"
	BootstrapCleared   = "cleared"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestDuration *prometheus.HistogramVec
	BackendCallDuration *prometheus.HistogramVec
	SessionBootstrap    *prometheus.CounterVec
	AuthActions         *prometheus.CounterVec
	BoardOperations     *prometheus.CounterVec
	AuditPublishFailed  prometheus.Counter
	RateLimited         *prometheus.CounterVec
	RateLimitDegraded   prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "supaboard_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: latencyBuckets,
		}, []string{"method", "route", "status"}),
		BackendCallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "supaboard_backend_call_duration_seconds",
			Help:    "Latency of calls to the hosted auth and table APIs",
			Buckets: latencyBuckets,
		}, []string{"operation", "outcome"}),
		SessionBootstrap: f.NewCounterVec(prometheus.CounterOpts{
			Name: "supaboard_session_bootstrap_total",
			Help: "Session cookie bootstrap outcomes",
		}, []string{"outcome"}),
		AuthActions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "supaboard_auth_actions_total",
			Help: "Auth action outcomes",
		}, []string{"action", "outcome"}),
		BoardOperations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "supaboard_board_operations_total",
			Help: "Task board operations",
		}, []string{"operation", "outcome"}),
		AuditPublishFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "supaboard_audit_publish_failed_total",
			Help: "Audit events that could not be published",
		}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Name: "supaboard_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}, []string{"class"}),
		RateLimitDegraded: f.NewCounter(prometheus.CounterOpts{
			Name: "supaboard_rate_limit_degraded_total",
			Help: "Rate limit checks answered by the in-process fallback",
		}),
	}
}

// ObserveHTTPRequest records the duration of one HTTP request.
// Call with time.Now() at the start of the request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, start time.Time) {
	if m == nil {
		return
	}
	if status == 0 {
		status = 200
	}
	m.HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}

// ObserveBackendCall records one backend call.
func (m *Metrics) ObserveBackendCall(operation string, err error, start time.Time) {
	if m == nil {
		return
	}
	m.BackendCallDuration.WithLabelValues(operation, outcome(err)).Observe(time.Since(start).Seconds())
}

// IncSessionBootstrap records a bootstrap outcome.
func (m *Metrics) IncSessionBootstrap(result string) {
	if m == nil {
		return
	}
	m.SessionBootstrap.WithLabelValues(result).Inc()
}

// IncAuthAction records an auth action outcome.
func (m *Metrics) IncAuthAction(action string, err error) {
	if m == nil {
		return
	}
	m.AuthActions.WithLabelValues(action, outcome(err)).Inc()
}

// IncBoardOperation records a board operation outcome.
func (m *Metrics) IncBoardOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.BoardOperations.WithLabelValues(operation, outcome(err)).Inc()
}

// IncAuditPublishFailed records a dropped audit event.
func (m *Metrics) IncAuditPublishFailed() {
	if m == nil {
		return
	}
	m.AuditPublishFailed.Inc()
}

// IncRateLimited records a rejected request.
func (m *Metrics) IncRateLimited(class string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(class).Inc()
}

// IncRateLimitDegraded records a check served by the fallback store.
func (m *Metrics) IncRateLimitDegraded() {
	if m == nil {
		return
	}
	m.RateLimitDegraded.Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
