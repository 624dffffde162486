package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/frezendesp/GroupManagement/pkg/observability"
	"github.com/frezendesp/GroupManagement/pkg/storage"
)

// Recorder appends audit entries. Implementations swallow failures.
type Recorder interface {
	Record(ctx context.Context, r Record)
}

// NopRecorder discards every entry
type NopRecorder struct{}

// Record implements Recorder
func (NopRecorder) Record(context.Context, Record) {}

const writeTimeout = 5 * time.Second

// DBRecorder writes audit entries to the audit_logs table
type DBRecorder struct {
	db      *sql.DB
	logger  *observability.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewDBRecorder creates a database-backed recorder
func NewDBRecorder(db *sql.DB, logger *observability.Logger, metrics *observability.Metrics) (*DBRecorder, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &DBRecorder{
		db:      db,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}, nil
}

// Record writes one entry in its own transaction. The write outlives a
// cancelled request so completed mutations still get their entry.
func (r *DBRecorder) Record(ctx context.Context, rec Record) {
	if !rec.Action.Valid() {
		err := fmt.Errorf("unknown audit action %q", rec.Action)
		r.metrics.ObserveAuditWrite(err)
		r.logger.WithError(err).Error("Rejected audit log entry")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	err := storage.InTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO audit_logs (user_id, action, target_type, target_id, details, timestamp, ip_address)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			nullInt64(rec.ActorID), string(rec.Action), nullString(rec.TargetType),
			nullInt64(rec.TargetID), nullString(rec.Details), r.now().UTC(), nullString(rec.IPAddress),
		)
		return err
	})
	r.metrics.ObserveAuditWrite(err)

	if err != nil {
		fields := map[string]interface{}{"action": string(rec.Action)}
		if rec.ActorID != nil {
			fields["actor_id"] = *rec.ActorID
		}
		r.logger.WithError(err).WithFields(fields).Error("Failed to write audit log entry")
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
