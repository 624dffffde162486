package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frezendesp/GroupManagement/pkg/audit"
	"github.com/frezendesp/GroupManagement/pkg/errs"
)

func setupAdmin(t *testing.T) (*Admin, *captureRecorder) {
	t.Helper()
	store := NewStore(setupTestDB(t))
	recorder := &captureRecorder{}
	return NewAdmin(NewGuard(store, nil), store, testUsers(), recorder, nil), recorder
}

func TestAdmin_GrantPermission(t *testing.T) {
	admin, recorder := setupAdmin(t)
	ctx := context.Background()

	granted, err := admin.GrantPermission(ctx, adminUser, 3, UserEditor, " ", "10.1.1.1")
	require.NoError(t, err)
	assert.True(t, granted)

	require.Len(t, recorder.records, 1)
	rec := recorder.records[0]
	assert.Equal(t, audit.ActionGrantPermission, rec.Action)
	assert.Equal(t, audit.TargetPermission, rec.TargetType)
	assert.Equal(t, int64(3), *rec.TargetID)
	assert.Equal(t, int64(1), *rec.ActorID)
	assert.Equal(t, "Granted permission user_editor to user GP User", rec.Details)
	assert.Equal(t, "10.1.1.1", rec.IPAddress)

	granted, err = admin.GrantPermission(ctx, adminUser, 3, UserEditor, "", "10.1.1.1")
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Len(t, recorder.records, 1, "unchanged grant is not audited")

	perms, err := admin.UserPermissions(ctx, adminUser, 3)
	require.NoError(t, err)
	assert.Equal(t, PermissionSet{UserEditor}, perms.Effective)
	require.Len(t, perms.Grants, 1)
	assert.Equal(t, int64(1), *perms.Grants[0].GrantedBy)
}

func TestAdmin_RevokePermission(t *testing.T) {
	admin, recorder := setupAdmin(t)
	ctx := context.Background()

	revoked, err := admin.RevokePermission(ctx, adminUser, 3, UserEditor, "", "")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, recorder.records)

	_, err = admin.GrantPermission(ctx, adminUser, 3, UserEditor, "", "")
	require.NoError(t, err)

	revoked, err = admin.RevokePermission(ctx, adminUser, 3, UserEditor, "", "")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.Len(t, recorder.records, 2)
	assert.Equal(t, audit.ActionRevokePermission, recorder.records[1].Action)
	assert.Equal(t, "Revoked permission user_editor from user GP User", recorder.records[1].Details)
}

func TestAdmin_RequiresFullAdmin(t *testing.T) {
	admin, recorder := setupAdmin(t)
	ctx := context.Background()

	_, err := admin.GrantPermission(ctx, managerUser, 3, UserEditor, "", "")
	assert.True(t, errs.IsAuthorization(err))

	_, err = admin.RevokePermission(ctx, nil, 3, UserEditor, "", "")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	_, err = admin.UserPermissions(ctx, plainUser, 3)
	assert.True(t, errs.IsAuthorization(err))

	assert.Empty(t, recorder.records)
}

func TestAdmin_Validation(t *testing.T) {
	admin, _ := setupAdmin(t)
	ctx := context.Background()

	_, err := admin.GrantPermission(ctx, adminUser, 3, "root", "", "")
	assert.True(t, errs.IsValidation(err))

	_, err = admin.GrantPermission(ctx, adminUser, 99, UserEditor, "", "")
	assert.True(t, errs.IsNotFound(err))
}

func TestAdmin_StoreFailure(t *testing.T) {
	admin := NewAdmin(NewGuard(&fakeGrants{}, nil), &fakeGrants{err: assert.AnError}, testUsers(), &captureRecorder{}, nil)

	_, err := admin.GrantPermission(context.Background(), adminUser, 3, UserEditor, "", "")
	assert.ErrorIs(t, err, errs.ErrOperationFailed)
}
