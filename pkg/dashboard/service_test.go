package dashboard

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frezendesp/GroupManagement/pkg/audit"
	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/contextkeys"
	"github.com/frezendesp/GroupManagement/pkg/directory"
	"github.com/frezendesp/GroupManagement/pkg/errs"
	"github.com/frezendesp/GroupManagement/pkg/groups"
	"github.com/frezendesp/GroupManagement/pkg/rbac"
	"github.com/frezendesp/GroupManagement/pkg/storage"
)

type fixture struct {
	service *Service
	admin   *auth.User
	gp      *auth.User
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = storage.NewMigrator(db, storage.SQLite, nil).Migrate(ctx,
		directory.Migrations(), groups.Migrations(), rbac.Migrations(), audit.Migrations())
	require.NoError(t, err)

	users := directory.NewStore(db)
	admin, err := users.Create(ctx, &auth.User{Username: "admin", Email: "admin@company.com", DisplayName: "System Administrator", Active: true, IsAdmin: true, CanManageGroups: true})
	require.NoError(t, err)
	gp, err := users.Create(ctx, &auth.User{Username: "gp.user", Email: "gp.user@company.com", DisplayName: "GP User", Active: true})
	require.NoError(t, err)
	_, err = users.Create(ctx, &auth.User{Username: "gone", Email: "gone@company.com", DisplayName: "Gone", Active: false})
	require.NoError(t, err)

	recorder, err := audit.NewDBRecorder(db, nil, nil)
	require.NoError(t, err)
	guard := rbac.NewGuard(rbac.NewStore(db), nil)
	groupStore := groups.NewStore(db)
	mgr := groups.NewManager(groupStore, users, guard, recorder, nil, nil)

	finance, err := mgr.CreateGroup(ctx, admin, groups.CreateGroupRequest{Name: "Finance", Email: "finance@company.com"}, "")
	require.NoError(t, err)
	_, err = mgr.CreateGroup(ctx, admin, groups.CreateGroupRequest{Name: "All Staff", Email: "all@company.com"}, "")
	require.NoError(t, err)
	_, err = mgr.AddMember(ctx, admin, finance.ID, gp.ID, "")
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		recorder.Record(ctx, audit.Record{
			ActorID: audit.Int64Ptr(gp.ID),
			Action:  audit.ActionGenerateReport,
			Details: fmt.Sprintf("report %d", i),
		})
	}

	return &fixture{
		service: NewService(users, groupStore, audit.NewDBStore(db), guard),
		admin:   admin,
		gp:      gp,
	}
}

func TestService_Dashboard(t *testing.T) {
	f := setupFixture(t)

	d, err := f.service.Dashboard(context.Background(), f.gp)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.ActiveUsers)
	assert.Equal(t, int64(2), d.ActiveGroups)
	assert.Equal(t, int64(1), d.MyGroups)
	require.Len(t, d.RecentActivity, RecentActivityLimit)
	for _, e := range d.RecentActivity {
		assert.Equal(t, f.gp.ID, *e.UserID)
	}

	d, err = f.service.Dashboard(context.Background(), f.admin)
	require.NoError(t, err)
	assert.Zero(t, d.MyGroups)
	assert.Len(t, d.RecentActivity, 3)

	_, err = f.service.Dashboard(context.Background(), nil)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestService_Overview(t *testing.T) {
	f := setupFixture(t)

	o, err := f.service.Overview(context.Background(), f.admin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), o.TotalUsers)
	assert.Equal(t, int64(2), o.ActiveUsers)
	assert.Equal(t, int64(2), o.TotalGroups)
	assert.Equal(t, int64(2), o.ActiveGroups)
	assert.Len(t, o.RecentActivity, OverviewActivityLimit)

	_, err = f.service.Overview(context.Background(), f.gp)
	assert.True(t, errs.IsAuthorization(err))
}

type failingActivity struct{}

func (failingActivity) Recent(context.Context, int, *int64) ([]*audit.Entry, error) {
	return nil, errors.New("audit table locked")
}

func TestService_DashboardFailure(t *testing.T) {
	f := setupFixture(t)
	f.service.activity = failingActivity{}

	_, err := f.service.Dashboard(context.Background(), f.gp)
	assert.ErrorIs(t, err, errs.ErrOperationFailed)
}

func TestHandlers(t *testing.T) {
	f := setupFixture(t)
	router := mux.NewRouter()
	h := NewHandlers(f.service)
	h.RegisterRoutes(router)
	h.RegisterAdminRoutes(router.PathPrefix("/admin").Subrouter())

	get := func(path string, actor *auth.User) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", path, nil)
		if actor != nil {
			req = req.WithContext(contextkeys.WithAuth(req.Context(), &auth.AuthContext{User: actor}))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := get("/dashboard", f.gp)
	require.Equal(t, http.StatusOK, rec.Code)
	var d Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, int64(1), d.MyGroups)

	assert.Equal(t, http.StatusUnauthorized, get("/dashboard", nil).Code)
	assert.Equal(t, http.StatusOK, get("/admin/overview", f.admin).Code)
	assert.Equal(t, http.StatusForbidden, get("/admin/overview", f.gp).Code)
}
