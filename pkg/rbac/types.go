package rbac

import (
	"sort"
	"strings"
	"time"
)

// Permission is a named capability that can be granted to a user
type Permission string

const (
	FullAdmin    Permission = "full_admin"
	ManageGroups Permission = "manage_groups"
	GroupManager Permission = "group_manager"
	UserEditor   Permission = "user_editor"
)

// KnownPermissions lists the permission types accepted by the admin API
func KnownPermissions() []Permission {
	return []Permission{FullAdmin, GroupManager, ManageGroups, UserEditor}
}

// Valid reports whether p is one of the known permission types
func (p Permission) Valid() bool {
	for _, known := range KnownPermissions() {
		if p == known {
			return true
		}
	}
	return false
}

// PermissionSet is a sorted, duplicate-free list of permissions
type PermissionSet []Permission

// NewPermissionSet builds a set from arbitrary permissions
func NewPermissionSet(perms ...Permission) PermissionSet {
	seen := make(map[Permission]struct{}, len(perms))
	set := make(PermissionSet, 0, len(perms))
	for _, p := range perms {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		set = append(set, p)
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set
}

// Has reports whether the set contains p
func (s PermissionSet) Has(p Permission) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= p })
	return i < len(s) && s[i] == p
}

// Strings returns the permission names
func (s PermissionSet) Strings() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = string(p)
	}
	return out
}

func (s PermissionSet) String() string {
	return strings.Join(s.Strings(), ",")
}

// Grant is an explicit permission assignment
type Grant struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	Permission Permission `json:"permission_type"`
	Scope      string     `json:"scope,omitempty"`
	GrantedBy  *int64     `json:"granted_by,omitempty"`
	GrantedAt  time.Time  `json:"granted_at"`
}

// Decision reasons
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonAdmin           = "admin"
	ReasonManageFlag      = "can_manage_groups"
	ReasonGrant           = "explicit_grant"
	ReasonNoGrant         = "no_grant"
	ReasonLookupFailed    = "grant_lookup_failed"
)

// Decision is the outcome of a single authorization check
type Decision struct {
	Allowed    bool       `json:"allowed"`
	Permission Permission `json:"permission"`
	Reason     string     `json:"reason"`
}

// UserPermissions describes a user's grants and the resulting effective set
type UserPermissions struct {
	UserID    int64         `json:"user_id"`
	Grants    []Grant       `json:"grants"`
	Effective PermissionSet `json:"effective"`
}
