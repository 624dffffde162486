package rbac

import (
	"context"
	"fmt"

	"github.com/frezendesp/GroupManagement/pkg/auth"
)

// Resolve returns the effective permissions of user: the permissions implied
// by the role flags plus every granted permission type.
func Resolve(user *auth.User, grants []Grant) PermissionSet {
	if user == nil {
		return PermissionSet{}
	}

	perms := make([]Permission, 0, len(grants)+2)
	if user.IsAdmin {
		perms = append(perms, FullAdmin)
	}
	if user.CanManageGroups {
		perms = append(perms, ManageGroups)
	}
	for _, g := range grants {
		perms = append(perms, g.Permission)
	}
	return NewPermissionSet(perms...)
}

// PermissionChecker computes effective permissions from stored grants
type PermissionChecker struct {
	grants GrantStore
}

// NewPermissionChecker creates a new permission checker
func NewPermissionChecker(grants GrantStore) *PermissionChecker {
	return &PermissionChecker{grants: grants}
}

// EffectivePermissions loads the user's grants and resolves them
func (pc *PermissionChecker) EffectivePermissions(ctx context.Context, user *auth.User) (PermissionSet, error) {
	if !user.IsAuthenticated() {
		return PermissionSet{}, nil
	}

	grants, err := pc.grants.ListGrants(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load grants for user %d: %w", user.ID, err)
	}
	return Resolve(user, grants), nil
}
