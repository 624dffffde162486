// Package rbac decides what an authenticated user may do.
//
// # Overview
//
// Access is derived from two sources:
//
//  1. Role flags on the user record (is_admin, can_manage_groups)
//  2. Explicit permission grants stored in user_permissions
//
// The flags map onto permissions directly: is_admin yields full_admin and
// can_manage_groups yields manage_groups. Grants add any further permission
// type, optionally qualified by a scope string.
//
// # Permissions
//
//	FullAdmin     - unrestricted administration
//	ManageGroups  - create groups and change membership
//	GroupManager  - grant-only variant of group management
//	UserEditor    - edit other users' directory profiles
//
// # Resolving
//
// Resolve is a pure function from a user and their grants to a sorted,
// deduplicated PermissionSet:
//
//	perms := rbac.Resolve(user, grants)
//	if perms.Has(rbac.UserEditor) {
//		// ...
//	}
//
// PermissionChecker loads the grants first:
//
//	checker := rbac.NewPermissionChecker(store)
//	perms, err := checker.EffectivePermissions(ctx, user)
//
// # Guarding operations
//
// Guard evaluates a single permission for an actor in a fixed order:
//
//  1. No actor (nil or unsaved): deny as unauthenticated
//  2. Administrator: allow
//  3. manage_groups requested and the flag is set: allow
//  4. An explicit grant exists: allow
//  5. Otherwise deny
//
// A failing grant lookup denies the request and logs the cause.
//
//	guard := rbac.NewGuard(store, logger)
//	if err := guard.Require(ctx, actor, rbac.ManageGroups); err != nil {
//		return err // errs.ErrUnauthenticated or *errs.AuthorizationError
//	}
//
// HTTP routes use the middleware form:
//
//	router.Handle("/groups", guard.RequirePermission(rbac.ManageGroups)(handler))
//
// Denials are not audited.
//
// # Administration
//
// Admin grants and revokes permissions on behalf of a full_admin actor and
// records grant_permission and revoke_permission audit entries. Granting an
// existing permission or revoking a missing one is reported as unchanged
// and is not audited.
package rbac
