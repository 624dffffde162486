// Package groups manages distribution groups and their membership.
//
// # Overview
//
// A distribution group has a unique name and a unique email address. Groups
// are deactivated rather than deleted. Membership is a set of (group, user)
// pairs; adding an existing member or removing a non-member changes nothing
// and is reported through MembershipResult rather than an error.
//
// # Access
//
// Every mutating operation requires the manage_groups permission, checked
// through rbac.Guard at the start of the operation:
//
//	mgr := groups.NewManager(store, users, guard, recorder, metrics, logger)
//	result, err := mgr.AddMember(ctx, actor, groupID, userID, ip)
//	switch {
//	case err != nil:
//		// validation, not found, authorization or storage failure
//	case result == groups.AlreadyMember:
//		// nothing changed, nothing audited
//	}
//
// # Auditing
//
// Changes are recorded with these actions:
//
//	add_group_member     "Added user <display name> to group <name>"
//	remove_group_member  "Removed user <display name> from group <name>"
//	create_group         "Created new group: <name>"
//
// Unchanged outcomes are not audited.
package groups
