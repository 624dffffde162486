package audit

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frezendesp/GroupManagement/pkg/storage"
)

// setupTestDB creates an in-memory database with a minimal users table and
// the audit schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	users := []storage.Migration{{
		Version:     1,
		Description: "Create users",
		Postgres: `CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL
		)`,
	}}

	_, err = storage.NewMigrator(db, storage.SQLite, nil).Migrate(context.Background(), users, Migrations())
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO users (username, display_name) VALUES ('admin', 'System Administrator'), ('gp.user', 'GP User')`)
	require.NoError(t, err)

	return db
}
