package groups

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frezendesp/GroupManagement/pkg/audit"
	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/directory"
	"github.com/frezendesp/GroupManagement/pkg/rbac"
	"github.com/frezendesp/GroupManagement/pkg/storage"
)

type captureRecorder struct {
	mu      sync.Mutex
	records []audit.Record
}

func (c *captureRecorder) Record(ctx context.Context, r audit.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
}

func (c *captureRecorder) count(action audit.Action) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, r := range c.records {
		if r.Action == action {
			n++
		}
	}
	return n
}

type fixture struct {
	db       *sql.DB
	store    *Store
	users    map[string]*auth.User
	grants   *rbac.Store
	guard    *rbac.Guard
	recorder *captureRecorder
	manager  *Manager
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = storage.NewMigrator(db, storage.SQLite, nil).Migrate(context.Background(),
		directory.Migrations(), Migrations(), rbac.Migrations())
	require.NoError(t, err)
	return db
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db := setupTestDB(t)
	users := directory.NewStore(db)

	seed := []*auth.User{
		{Username: "admin", Email: "admin@company.com", DisplayName: "System Administrator", Department: "IT", Active: true, IsAdmin: true, CanManageGroups: true},
		{Username: "hr.manager", Email: "hr.manager@company.com", DisplayName: "HR Manager", Department: "Human Resources", Active: true, CanManageGroups: true},
		{Username: "gp.user", Email: "gp.user@company.com", DisplayName: "GP User", Department: "General Practice", Active: true},
		{Username: "comm.user", Email: "comm.user@company.com", DisplayName: "Communications User", Department: "Communications", Active: true},
	}
	byName := make(map[string]*auth.User, len(seed))
	for _, u := range seed {
		created, err := users.Create(ctx, u)
		require.NoError(t, err)
		byName[u.Username] = created
	}

	grants := rbac.NewStore(db)
	guard := rbac.NewGuard(grants, nil)
	recorder := &captureRecorder{}
	store := NewStore(db)

	return &fixture{
		db:       db,
		store:    store,
		users:    byName,
		grants:   grants,
		guard:    guard,
		recorder: recorder,
		manager:  NewManager(store, users, guard, recorder, nil, nil),
	}
}

func (f *fixture) createGroup(t *testing.T, name, email string) *Group {
	t.Helper()
	g, err := f.manager.CreateGroup(context.Background(), f.users["admin"], CreateGroupRequest{
		Name:  name,
		Email: email,
	}, "127.0.0.1")
	require.NoError(t, err)
	return g
}
