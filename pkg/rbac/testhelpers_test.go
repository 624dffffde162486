package rbac

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frezendesp/GroupManagement/pkg/audit"
	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/errs"
	"github.com/frezendesp/GroupManagement/pkg/storage"
)

// setupTestDB creates an in-memory database with a minimal users table and
// the permission schema.
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
			username TEXT NOT NULL UNIQUE
		)`,
	}}

	_, err = storage.NewMigrator(db, storage.SQLite, nil).Migrate(context.Background(), users, Migrations())
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO users (username) VALUES ('admin'), ('hr.manager'), ('gp.user')`)
	require.NoError(t, err)

	return db
}

type fakeGrants struct {
	grants map[int64][]Grant
	err    error
}

func (f *fakeGrants) HasGrant(ctx context.Context, userID int64, perm Permission) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, g := range f.grants[userID] {
		if g.Permission == perm {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGrants) ListGrants(ctx context.Context, userID int64) ([]Grant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.grants[userID], nil
}

func (f *fakeGrants) Grant(ctx context.Context, g *Grant) (bool, error) {
	return false, f.err
}

func (f *fakeGrants) Revoke(ctx context.Context, userID int64, perm Permission, scope string) (bool, error) {
	return false, f.err
}

type fakeUsers map[int64]*auth.User

func (f fakeUsers) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, errs.NewNotFoundError("user", id)
	}
	return u, nil
}

type captureRecorder struct {
	mu      sync.Mutex
	records []audit.Record
}

func (c *captureRecorder) Record(ctx context.Context, r audit.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
}

var (
	adminUser   = &auth.User{ID: 1, Username: "admin", DisplayName: "System Administrator", Active: true, IsAdmin: true, CanManageGroups: true}
	managerUser = &auth.User{ID: 2, Username: "hr.manager", DisplayName: "HR Manager", Active: true, CanManageGroups: true}
	plainUser   = &auth.User{ID: 3, Username: "gp.user", DisplayName: "GP User", Active: true}
)

func testUsers() fakeUsers {
	return fakeUsers{1: adminUser, 2: managerUser, 3: plainUser}
}
