package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Database metrics
	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge

	// Business metrics
	LoginsTotal            *prometheus.CounterVec
	MembershipChangesTotal *prometheus.CounterVec
	GroupsCreatedTotal     prometheus.Counter
	UserEditsTotal         prometheus.Counter
	ReportsGeneratedTotal  *prometheus.CounterVec

	// Audit metrics
	AuditWritesTotal        prometheus.Counter
	AuditWriteFailuresTotal prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groupadmin_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "groupadmin_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "groupadmin_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "route"},
		),

		DBConnectionsOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "groupadmin_db_connections_open",
				Help: "Number of open database connections",
			},
		),
		DBConnectionsInUse: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "groupadmin_db_connections_in_use",
				Help: "Number of database connections in use",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "groupadmin_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),

		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groupadmin_logins_total",
				Help: "Login attempts by outcome",
			},
			[]string{"status"},
		),
		MembershipChangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groupadmin_membership_changes_total",
				Help: "Membership add/remove calls by outcome",
			},
			[]string{"operation", "result"},
		),
		GroupsCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "groupadmin_groups_created_total",
				Help: "Distribution groups created",
			},
		),
		UserEditsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "groupadmin_user_edits_total",
				Help: "Saved user profile edits",
			},
		),
		ReportsGeneratedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groupadmin_reports_generated_total",
				Help: "Membership reports rendered by format",
			},
			[]string{"format"},
		),

		AuditWritesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "groupadmin_audit_writes_total",
				Help: "Audit entries written",
			},
		),
		AuditWriteFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "groupadmin_audit_write_failures_total",
				Help: "Audit entries that could not be written and were dropped",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.DBConnectionsOpen,
		m.DBConnectionsInUse,
		m.DBConnectionsIdle,
		m.LoginsTotal,
		m.MembershipChangesTotal,
		m.GroupsCreatedTotal,
		m.UserEditsTotal,
		m.ReportsGeneratedTotal,
		m.AuditWritesTotal,
		m.AuditWriteFailuresTotal,
	)

	return m
}

// The Observe* helpers are nil-safe so packages can run without metrics in tests.

// ObserveLogin counts a login attempt
func (m *Metrics) ObserveLogin(status string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(status).Inc()
}

// ObserveMembershipChange counts an add/remove call and its result
func (m *Metrics) ObserveMembershipChange(operation, result string) {
	if m == nil {
		return
	}
	m.MembershipChangesTotal.WithLabelValues(operation, result).Inc()
}

// ObserveGroupCreated counts a created group
func (m *Metrics) ObserveGroupCreated() {
	if m == nil {
		return
	}
	m.GroupsCreatedTotal.Inc()
}

// ObserveUserEdit counts a saved profile edit
func (m *Metrics) ObserveUserEdit() {
	if m == nil {
		return
	}
	m.UserEditsTotal.Inc()
}

// ObserveReport counts a rendered report
func (m *Metrics) ObserveReport(format string) {
	if m == nil {
		return
	}
	m.ReportsGeneratedTotal.WithLabelValues(format).Inc()
}

// ObserveAuditWrite counts an audit write outcome
func (m *Metrics) ObserveAuditWrite(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.AuditWriteFailuresTotal.Inc()
		return
	}
	m.AuditWritesTotal.Inc()
}

// UpdateDBStats copies connection pool statistics into the gauges
func (m *Metrics) UpdateDBStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
	m.DBConnectionsInUse.Set(float64(stats.InUse))
	m.DBConnectionsIdle.Set(float64(stats.Idle))
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// routeLabel prefers the mux route template to keep label cardinality bounded
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return r.URL.Path
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			route := routeLabel(r)
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(duration)
			metrics.HTTPResponseSize.WithLabelValues(r.Method, route).Observe(float64(rw.bytesWritten))
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
