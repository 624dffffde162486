// Package observability provides structured logging, Prometheus metrics, health
// probes and OpenTelemetry tracing for the group administration service.
//
// # Structured Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("group_id", groupID).Info("member added")
//
// Request-scoped logging picks up the request id and user id placed in the
// context by the HTTP middleware:
//
//	observability.FromContext(r.Context()).WithError(err).Error("update failed")
//
// # Prometheus Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.MembershipChangesTotal.WithLabelValues("add", "added").Inc()
//
// # Health
//
// /health/live always answers 200 while the process runs. /health/ready pings
// the database and, when configured, Redis.
package observability
