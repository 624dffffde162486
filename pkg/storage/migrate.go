package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/frezendesp/GroupManagement/pkg/observability"
)

// Migration is one versioned schema change. SQLite falls back to the
// Postgres statement when empty.
type Migration struct {
	Version     int
	Description string
	Postgres    string
	SQLite      string
}

// SQLFor returns the statement for a dialect
func (m Migration) SQLFor(d Dialect) string {
	if d == SQLite && m.SQLite != "" {
		return m.SQLite
	}
	return m.Postgres
}

// Migrator applies migrations and records them in schema_migrations
type Migrator struct {
	db      *sql.DB
	dialect Dialect
	logger  *observability.Logger
}

// NewMigrator creates a migrator
func NewMigrator(db *sql.DB, dialect Dialect, logger *observability.Logger) *Migrator {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Migrator{db: db, dialect: dialect, logger: logger}
}

func (m *Migrator) initialize(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version BIGINT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	return nil
}

// Applied returns the set of applied versions
func (m *Migrator) Applied(ctx context.Context) (map[int]bool, error) {
	if err := m.initialize(ctx); err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// Migrate applies every pending migration in version order. Each
// migration runs in its own transaction together with its bookkeeping row.
func (m *Migrator) Migrate(ctx context.Context, sets ...[]Migration) (int, error) {
	var all []Migration
	seen := make(map[int]string)
	for _, set := range sets {
		for _, mig := range set {
			if prev, dup := seen[mig.Version]; dup {
				return 0, fmt.Errorf("duplicate migration version %d (%s, %s)", mig.Version, prev, mig.Description)
			}
			seen[mig.Version] = mig.Description
			all = append(all, mig)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Version < all[j].Version })

	applied, err := m.Applied(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, mig := range all {
		if applied[mig.Version] {
			continue
		}

		err := InTx(ctx, m.db, nil, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, mig.SQLFor(m.dialect)); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, description) VALUES ($1, $2)",
				mig.Version, mig.Description)
			return err
		})
		if err != nil {
			return count, fmt.Errorf("migration %d (%s) failed: %w", mig.Version, mig.Description, err)
		}

		m.logger.WithFields(map[string]interface{}{
			"version":     mig.Version,
			"description": mig.Description,
		}).Info("Applied migration")
		count++
	}

	return count, nil
}
