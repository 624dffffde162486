package directory

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frezendesp/GroupManagement/pkg/audit"
	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/storage"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = storage.NewMigrator(db, storage.SQLite, nil).Migrate(context.Background(), Migrations())
	require.NoError(t, err)
	return db
}

// seedDirectory creates the default accounts plus a few search fixtures
func seedDirectory(t *testing.T, store *Store) map[string]*auth.User {
	t.Helper()
	ctx := context.Background()

	users := []*auth.User{
		{Username: "admin", Email: "admin@company.com", DisplayName: "System Administrator", Department: "IT", Active: true, IsAdmin: true, CanManageGroups: true},
		{Username: "hr.manager", Email: "hr.manager@company.com", DisplayName: "HR Manager", Department: "Human Resources", Active: true, CanManageGroups: true},
		{Username: "gp.user", Email: "gp.user@company.com", DisplayName: "GP User", Department: "General Practice", Active: true},
		{Username: "abby", Email: "abby.smith@company.com", DisplayName: "Abby Smith", Department: "Finance", Active: true},
		{Username: "gabe", Email: "gjones@company.com", DisplayName: "Gabe Jones", Department: "Finance", Active: true},
		{Username: "abe", Email: "abe@company.com", DisplayName: "Abe Former", Department: "Legal", Active: false},
	}

	byName := make(map[string]*auth.User, len(users))
	for _, u := range users {
		created, err := store.Create(ctx, u)
		require.NoError(t, err)
		byName[u.Username] = created
	}
	return byName
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
