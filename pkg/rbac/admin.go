package rbac

import (
	"context"
	"fmt"
	"strings"

	"github.com/frezendesp/GroupManagement/pkg/audit"
	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/errs"
	"github.com/frezendesp/GroupManagement/pkg/observability"
)

// UserGetter loads users by id. Missing users yield *errs.NotFoundError.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*auth.User, error)
}

// Admin manages permission grants for full administrators
type Admin struct {
	guard  *Guard
	grants GrantStore
	users  UserGetter
	audit  audit.Recorder
	logger *observability.Logger
}

// NewAdmin creates the permission administration service
func NewAdmin(guard *Guard, grants GrantStore, users UserGetter, recorder audit.Recorder, logger *observability.Logger) *Admin {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Admin{
		guard:  guard,
		grants: grants,
		users:  users,
		audit:  recorder,
		logger: logger,
	}
}

// UserPermissions returns the grants and effective permissions of a user
func (a *Admin) UserPermissions(ctx context.Context, actor *auth.User, userID int64) (*UserPermissions, error) {
	if err := a.guard.Require(ctx, actor, FullAdmin); err != nil {
		return nil, err
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	grants, err := a.grants.ListGrants(ctx, userID)
	if err != nil {
		return nil, errs.Failed("list grants", err)
	}

	return &UserPermissions{
		UserID:    userID,
		Grants:    grants,
		Effective: Resolve(user, grants),
	}, nil
}

// GrantPermission gives perm to a user. It reports false without auditing
// when the grant already exists.
func (a *Admin) GrantPermission(ctx context.Context, actor *auth.User, userID int64, perm Permission, scope, ip string) (bool, error) {
	if err := a.guard.Require(ctx, actor, FullAdmin); err != nil {
		return false, err
	}
	if !perm.Valid() {
		return false, errs.NewValidationError("permission_type", "unknown permission type")
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	grantedBy := actor.ID
	created, err := a.grants.Grant(ctx, &Grant{
		UserID:     userID,
		Permission: perm,
		Scope:      strings.TrimSpace(scope),
		GrantedBy:  &grantedBy,
	})
	if err != nil {
		return false, errs.Failed("grant permission", err)
	}
	if !created {
		return false, nil
	}

	a.audit.Record(ctx, audit.Record{
		ActorID:    audit.Int64Ptr(actor.ID),
		Action:     audit.ActionGrantPermission,
		TargetType: audit.TargetPermission,
		TargetID:   audit.Int64Ptr(userID),
		Details:    fmt.Sprintf("Granted permission %s to user %s", perm, user.DisplayName),
		IPAddress:  ip,
	})

	a.logger.WithFields(map[string]interface{}{
		"actor_id":   actor.ID,
		"user_id":    userID,
		"permission": string(perm),
	}).Info("Permission granted")

	return true, nil
}

// RevokePermission removes a grant. It reports false without auditing when
// the user did not hold it.
func (a *Admin) RevokePermission(ctx context.Context, actor *auth.User, userID int64, perm Permission, scope, ip string) (bool, error) {
	if err := a.guard.Require(ctx, actor, FullAdmin); err != nil {
		return false, err
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	removed, err := a.grants.Revoke(ctx, userID, perm, strings.TrimSpace(scope))
	if err != nil {
		return false, errs.Failed("revoke permission", err)
	}
	if !removed {
		return false, nil
	}

	a.audit.Record(ctx, audit.Record{
		ActorID:    audit.Int64Ptr(actor.ID),
		Action:     audit.ActionRevokePermission,
		TargetType: audit.TargetPermission,
		TargetID:   audit.Int64Ptr(userID),
		Details:    fmt.Sprintf("Revoked permission %s from user %s", perm, user.DisplayName),
		IPAddress:  ip,
	})

	a.logger.WithFields(map[string]interface{}{
		"actor_id":   actor.ID,
		"user_id":    userID,
		"permission": string(perm),
	}).Info("Permission revoked")

	return true, nil
}
