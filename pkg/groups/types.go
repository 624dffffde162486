package groups

import "time"

// DefaultGroupType is assigned when a group is created without a type
const DefaultGroupType = "distribution"

// PageSize is the number of groups per listing page
const PageSize = 20

// Group is a distribution group
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Description string    `json:"description"`
	GroupType   string    `json:"group_type"`
	Active      bool      `json:"active"`
	CreatedBy   *int64    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	MemberCount int64     `json:"member_count"`
}

// Member is a user in a group
type Member struct {
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Department  string    `json:"department"`
	Location    string    `json:"location"`
	Phone       string    `json:"phone"`
	AddedAt     time.Time `json:"added_at"`
}

// MembershipResult is the outcome of a membership change
type MembershipResult string

const (
	Added         MembershipResult = "added"
	AlreadyMember MembershipResult = "already_member"
	Removed       MembershipResult = "removed"
	NotMember     MembershipResult = "not_member"
)

// Changed reports whether the membership was modified
func (r MembershipResult) Changed() bool {
	return r == Added || r == Removed
}

// column lengths of the groups table
const (
	maxNameLen      = 100
	maxEmailLen     = 120
	maxGroupTypeLen = 50
)

// CreateGroupRequest describes a new group
type CreateGroupRequest struct {
	Name        string `json:"name" validate:"notblank,max=100"`
	Email       string `json:"email" validate:"notblank,max=120"`
	Description string `json:"description"`
	GroupType   string `json:"group_type" validate:"max=50"`
}

// ListFilter selects a page of active groups
type ListFilter struct {
	Search string
	Page   int
}

// GroupPage is one page of a group listing
type GroupPage struct {
	Groups   []*Group `json:"groups"`
	Total    int64    `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	Pages    int      `json:"pages"`
}

// GroupDetail is a group with its ordered members
type GroupDetail struct {
	Group     *Group   `json:"group"`
	Members   []Member `json:"members"`
	CanManage bool     `json:"can_manage"`
}

// Stats are aggregate group counts
type Stats struct {
	TotalGroups  int64 `json:"total_groups"`
	ActiveGroups int64 `json:"active_groups"`
}
