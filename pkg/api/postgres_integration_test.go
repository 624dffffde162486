//go:build integration

package api

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frezendesp/GroupManagement/pkg/audit"
	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/directory"
	"github.com/frezendesp/GroupManagement/pkg/errs"
	"github.com/frezendesp/GroupManagement/pkg/groups"
	"github.com/frezendesp/GroupManagement/pkg/rbac"
)

func TestPostgres_GroupMembership(t *testing.T) {
	db, cleanup := SetupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	users := directory.NewStore(db)
	admin, err := users.Create(ctx, &auth.User{Username: "admin", Email: "admin@company.com", DisplayName: "System Administrator", Active: true, IsAdmin: true})
	require.NoError(t, err)
	gp, err := users.Create(ctx, &auth.User{Username: "gp.user", Email: "gp.user@company.com", DisplayName: "GP User", Active: true})
	require.NoError(t, err)

	_, err = users.Create(ctx, &auth.User{Username: "other", Email: "gp.user@company.com", DisplayName: "Other"})
	var verr *errs.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "email", verr.Field)

	recorder, err := audit.NewDBRecorder(db, nil, nil)
	require.NoError(t, err)
	guard := rbac.NewGuard(rbac.NewStore(db), nil)
	mgr := groups.NewManager(groups.NewStore(db), users, guard, recorder, nil, nil)

	group, err := mgr.CreateGroup(ctx, admin, groups.CreateGroupRequest{Name: "Finance", Email: "finance@company.com"}, "10.0.0.1")
	require.NoError(t, err)

	result, err := mgr.AddMember(ctx, admin, group.ID, gp.ID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, groups.Added, result)
	result, err = mgr.AddMember(ctx, admin, group.ID, gp.ID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, groups.AlreadyMember, result)

	_, err = groups.NewStore(db).Create(ctx, &groups.Group{Name: "Finance", Email: "x@company.com"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Field)

	entries, err := audit.NewDBStore(db).Search(ctx, audit.SearchFilter{Actions: []audit.Action{audit.ActionAddGroupMember}})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Added user GP User to group Finance", entries[0].Details)
	assert.Equal(t, "10.0.0.1", entries[0].IPAddress)
}
