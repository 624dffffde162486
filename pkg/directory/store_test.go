package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/errs"
)

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	created, err := store.Create(ctx, &auth.User{
		Username:    "comm.user",
		Email:       "comm.user@company.com",
		DisplayName: "Communications User",
		Department:  "Communications",
		Active:      true,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "comm.user", got.Username)
	assert.Equal(t, "Communications", got.Department)
	assert.Empty(t, got.Phone)
	assert.True(t, got.Active)
	assert.False(t, got.IsAdmin)
	assert.Nil(t, got.LastLogin)

	byName, err := store.GetByUsername(ctx, "comm.user")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
}

func TestStore_Missing(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	u, err := store.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, u)

	_, err = store.GetByID(ctx, 42)
	assert.True(t, errs.IsNotFound(err))

	err = store.Update(ctx, 42, map[Field]string{FieldPhone: "1"})
	assert.True(t, errs.IsNotFound(err))
}

func TestStore_CreateDuplicates(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()
	seedDirectory(t, store)

	_, err := store.Create(ctx, &auth.User{Username: "admin", Email: "other@company.com", DisplayName: "X"})
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "username", verr.Field)

	_, err = store.Create(ctx, &auth.User{Username: "other", Email: "admin@company.com", DisplayName: "X"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
}

func TestStore_TouchLastLoginAndUpdate(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()
	users := seedDirectory(t, store)
	id := users["gp.user"].ID

	at := time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)
	require.NoError(t, store.TouchLastLogin(ctx, id, at))

	require.NoError(t, store.Update(ctx, id, map[Field]string{
		FieldPhone:    "555-0100",
		FieldLocation: "Building 2",
	}))

	got, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, at.Equal(*got.LastLogin))
	assert.Equal(t, "555-0100", got.Phone)
	assert.Equal(t, "Building 2", got.Location)
	assert.Equal(t, "GP User", got.DisplayName)
}

func TestStore_UpdateRejectsUnknownField(t *testing.T) {
	store := NewStore(setupTestDB(t))
	users := seedDirectory(t, store)

	err := store.Update(context.Background(), users["gp.user"].ID, map[Field]string{"is_admin": "1"})
	assert.Error(t, err)
}

func TestStore_Search(t *testing.T) {
	store := NewStore(setupTestDB(t))
	seedDirectory(t, store)

	results, err := store.Search(context.Background(), "ab", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Abby Smith", results[0].DisplayName)
	assert.Equal(t, "Gabe Jones", results[1].DisplayName)
	assert.Equal(t, "Finance", results[0].Department)

	results, err = store.Search(context.Background(), "HR.MANAGER@", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "HR Manager", results[0].DisplayName)
}

func TestStore_List(t *testing.T) {
	store := NewStore(setupTestDB(t))
	seedDirectory(t, store)
	ctx := context.Background()

	users, total, err := store.List(ctx, ListFilter{}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total, "inactive users are excluded")
	require.Len(t, users, 5)
	assert.Equal(t, "Abby Smith", users[0].DisplayName)
	assert.Equal(t, "GP User", users[1].DisplayName)
	assert.Equal(t, "System Administrator", users[4].DisplayName)

	users, total, err = store.List(ctx, ListFilter{Department: "Finance"}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 2)

	users, total, err = store.List(ctx, ListFilter{Search: "gp."}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "gp.user", users[0].Username)

	users, total, err = store.List(ctx, ListFilter{}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, users, 2)
	assert.Equal(t, "Gabe Jones", users[0].DisplayName)
}

func TestStore_DepartmentsAndStats(t *testing.T) {
	store := NewStore(setupTestDB(t))
	seedDirectory(t, store)
	ctx := context.Background()

	departments, err := store.Departments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Finance", "General Practice", "Human Resources", "IT"}, departments)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalUsers: 6, ActiveUsers: 5}, stats)

	active, err := store.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), active)
}

func TestStore_QueryErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)
	ctx := context.Background()

	mock.ExpectQuery("FROM users WHERE id").
		WithArgs(int64(1)).
		WillReturnError(errors.New("connection refused"))
	_, err = store.GetByID(ctx, 1)
	assert.ErrorContains(t, err, "failed to get user")
	assert.False(t, errs.IsNotFound(err))

	mock.ExpectQuery("SELECT DISTINCT department").
		WillReturnError(errors.New("connection refused"))
	_, err = store.Departments(ctx)
	assert.ErrorContains(t, err, "failed to list departments")

	assert.NoError(t, mock.ExpectationsWereMet())
}
