package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/frezendesp/GroupManagement/pkg/errs"
	"github.com/frezendesp/GroupManagement/pkg/storage"
)

const maxExportRows = 10000

// Store provides methods for querying and managing audit logs
type Store interface {
	// Recent returns the newest entries, optionally for one actor
	Recent(ctx context.Context, limit int, actorID *int64) ([]*Entry, error)

	Search(ctx context.Context, filter SearchFilter) ([]*Entry, error)
	Get(ctx context.Context, id int64) (*Entry, error)
	Count(ctx context.Context, filter SearchFilter) (int64, error)
	Export(ctx context.Context, filter SearchFilter, format ExportFormat) ([]byte, error)

	// Cleanup removes entries older than the retention period
	Cleanup(ctx context.Context, policy RetentionPolicy) (int64, error)
}

// DBStore implements Store over the audit_logs table
type DBStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewDBStore creates a new database-backed audit store
func NewDBStore(db *sql.DB) *DBStore {
	return &DBStore{db: db, now: time.Now}
}

const selectEntries = `
	SELECT a.id, a.timestamp, a.user_id, u.username, u.display_name,
		a.action, a.target_type, a.target_id, a.details, a.ip_address
	FROM audit_logs a
	LEFT JOIN users u ON u.id = a.user_id`

// Recent returns the newest entries, optionally for one actor
func (s *DBStore) Recent(ctx context.Context, limit int, actorID *int64) ([]*Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.Search(ctx, SearchFilter{UserID: actorID, Limit: limit})
}

// Search searches audit logs based on filters
func (s *DBStore) Search(ctx context.Context, filter SearchFilter) ([]*Entry, error) {
	where, args := buildWhere(filter)
	query := selectEntries + where

	order := "DESC"
	if filter.SortOrder == "asc" {
		order = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY a.timestamp %s, a.id %s", order, order)

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			// OFFSET needs a LIMIT in SQLite
			args = append(args, maxExportRows)
			query += fmt.Sprintf(" LIMIT $%d", len(args))
		}
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search audit logs: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit logs: %w", err)
	}

	return entries, nil
}

// Get retrieves a single entry
func (s *DBStore) Get(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, selectEntries+" WHERE a.id = $1", id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFoundError("audit entry", id)
	}
	return entry, err
}

// Count returns the number of entries matching filter, ignoring paging
func (s *DBStore) Count(ctx context.Context, filter SearchFilter) (int64, error) {
	where, args := buildWhere(filter)

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs a"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit logs: %w", err)
	}
	return count, nil
}

// Export exports audit logs in the specified format
func (s *DBStore) Export(ctx context.Context, filter SearchFilter, format ExportFormat) ([]byte, error) {
	if filter.Limit <= 0 || filter.Limit > maxExportRows {
		filter.Limit = maxExportRows
	}

	switch format {
	case ExportFormatJSON, ExportFormatCSV, ExportFormatNDJSON:
	default:
		return nil, errs.NewValidationError("format", "format must be one of: json, csv, ndjson")
	}

	entries, err := s.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	switch format {
	case ExportFormatCSV:
		return exportCSV(entries)
	case ExportFormatNDJSON:
		return exportNDJSON(entries)
	default:
		return exportJSON(entries)
	}
}

// Cleanup removes audit logs older than the retention period
func (s *DBStore) Cleanup(ctx context.Context, policy RetentionPolicy) (int64, error) {
	if policy.RetentionDays <= 0 {
		return 0, fmt.Errorf("retention days must be positive, got %d", policy.RetentionDays)
	}

	cutoff := s.now().UTC().AddDate(0, 0, -policy.RetentionDays)

	result, err := s.db.ExecContext(ctx, "DELETE FROM audit_logs WHERE timestamp < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit logs: %w", err)
	}

	return result.RowsAffected()
}

func buildWhere(filter SearchFilter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	add := func(clause string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.StartTime != nil {
		add("a.timestamp >= $%d", filter.StartTime.UTC())
	}
	if filter.EndTime != nil {
		add("a.timestamp <= $%d", filter.EndTime.UTC())
	}
	if filter.UserID != nil {
		add("a.user_id = $%d", *filter.UserID)
	}
	if len(filter.Actions) > 0 {
		placeholders := make([]string, len(filter.Actions))
		for i, action := range filter.Actions {
			args = append(args, string(action))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, "a.action IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.TargetType != "" {
		add("a.target_type = $%d", filter.TargetType)
	}
	if filter.TargetID != nil {
		add("a.target_id = $%d", *filter.TargetID)
	}
	if filter.IPAddress != "" {
		add("a.ip_address = $%d", filter.IPAddress)
	}
	if filter.Text != "" {
		add("LOWER(a.details) LIKE LOWER($%d) "+storage.LikeEscape, storage.ContainsPattern(filter.Text))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry                          Entry
		userID, targetID               sql.NullInt64
		username, displayName          sql.NullString
		targetType, details, ipAddress sql.NullString
		action                         string
	)

	err := row.Scan(
		&entry.ID, &entry.Timestamp, &userID, &username, &displayName,
		&action, &targetType, &targetID, &details, &ipAddress,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan audit log: %w", err)
	}

	entry.Action = Action(action)
	if userID.Valid {
		entry.UserID = &userID.Int64
	}
	if targetID.Valid {
		entry.TargetID = &targetID.Int64
	}
	entry.Username = username.String
	entry.DisplayName = displayName.String
	entry.TargetType = targetType.String
	entry.Details = details.String
	entry.IPAddress = ipAddress.String

	return &entry, nil
}
