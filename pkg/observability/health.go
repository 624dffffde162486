package observability

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Probe checks one dependency. A failing critical probe makes the service
// unhealthy; any other failure only degrades it.
type Probe struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) (string, error)
}

// HealthChecker runs readiness probes
type HealthChecker struct {
	probes  []Probe
	version string
}

// NewHealthChecker probes the database and, when sessions live in Redis,
// the session store. Either may be nil.
func NewHealthChecker(db *sql.DB, sessions *redis.Client, version string) *HealthChecker {
	h := &HealthChecker{version: version}
	if db != nil {
		h.probes = append(h.probes, Probe{Name: "database", Critical: true, Check: databaseProbe(db)})
	}
	if sessions != nil {
		h.probes = append(h.probes, Probe{Name: "sessions", Check: func(ctx context.Context) (string, error) {
			return "", sessions.Ping(ctx).Err()
		}})
	}
	return h
}

// AddProbe registers an extra probe
func (h *HealthChecker) AddProbe(p Probe) {
	h.probes = append(h.probes, p)
}

// HealthStatus is the readiness response body
type HealthStatus struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Version      string                      `json:"version,omitempty"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus is the outcome of one probe
type DependencyStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// errDegraded marks a probe that works but is under pressure
var errDegraded = errors.New("degraded")

func databaseProbe(db *sql.DB) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		if err := db.PingContext(ctx); err != nil {
			return "", err
		}

		// readiness also means the schema is in place
		var applied int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
			return "", errors.New("schema not migrated: " + err.Error())
		}
		if applied == 0 {
			return "", errors.New("schema not migrated")
		}

		stats := db.Stats()
		if stats.MaxOpenConnections > 1 && stats.InUse >= stats.MaxOpenConnections {
			return "connection pool exhausted", errDegraded
		}
		return "", nil
	}
}

// Check runs every probe
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:       StatusHealthy,
		Timestamp:    time.Now().UTC(),
		Version:      h.version,
		Dependencies: make(map[string]DependencyStatus, len(h.probes)),
	}

	for _, p := range h.probes {
		start := time.Now()
		msg, err := p.Check(ctx)
		dep := DependencyStatus{
			Status:    StatusHealthy,
			Message:   msg,
			LatencyMS: time.Since(start).Milliseconds(),
		}

		switch {
		case err == nil:
		case errors.Is(err, errDegraded):
			dep.Status = StatusDegraded
		default:
			dep.Status = StatusUnhealthy
			dep.Message = err.Error()
		}
		status.Dependencies[p.Name] = dep

		switch {
		case dep.Status == StatusHealthy:
		case dep.Status == StatusUnhealthy && p.Critical:
			status.Status = StatusUnhealthy
		case status.Status != StatusUnhealthy:
			status.Status = StatusDegraded
		}
	}

	return status
}

// Liveness answers 200 while the process is serving
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, HealthStatus{Status: StatusHealthy, Timestamp: time.Now().UTC(), Version: h.version})
}

// Readiness answers 503 when a critical probe fails
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)
	code := http.StatusOK
	if status.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeHealth(w, code, status)
}

func writeHealth(w http.ResponseWriter, code int, status HealthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}

// RegisterHealthRoutes registers health check endpoints
func RegisterHealthRoutes(mux *http.ServeMux, checker *HealthChecker) {
	mux.HandleFunc("/health", checker.Readiness)
	mux.HandleFunc("/health/live", checker.Liveness)
	mux.HandleFunc("/health/ready", checker.Readiness)
}
