package audit

import "time"

// Action names an audited operation
type Action string

const (
	ActionLogin             Action = "login"
	ActionLoginFailed       Action = "login_failed"
	ActionLogout            Action = "logout"
	ActionAddGroupMember    Action = "add_group_member"
	ActionRemoveGroupMember Action = "remove_group_member"
	ActionCreateGroup       Action = "create_group"
	ActionEditUser          Action = "edit_user"
	ActionGrantPermission   Action = "grant_permission"
	ActionRevokePermission  Action = "revoke_permission"
	ActionGenerateReport    Action = "generate_report"
)

var knownActions = map[Action]bool{
	ActionLogin:             true,
	ActionLoginFailed:       true,
	ActionLogout:            true,
	ActionAddGroupMember:    true,
	ActionRemoveGroupMember: true,
	ActionCreateGroup:       true,
	ActionEditUser:          true,
	ActionGrantPermission:   true,
	ActionRevokePermission:  true,
	ActionGenerateReport:    true,
}

// Valid reports whether a is one of the known actions
func (a Action) Valid() bool {
	return knownActions[a]
}

// Target types
const (
	TargetUser       = "user"
	TargetGroup      = "group"
	TargetPermission = "permission"
)

// Record is an audit entry to be written
type Record struct {
	ActorID    *int64
	Action     Action
	TargetType string
	TargetID   *int64
	Details    string
	IPAddress  string
}

// Entry is a stored audit entry. Username and DisplayName come from the
// acting user when one is set.
type Entry struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	UserID      *int64    `json:"user_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Action      Action    `json:"action"`
	TargetType  string    `json:"target_type,omitempty"`
	TargetID    *int64    `json:"target_id,omitempty"`
	Details     string    `json:"details,omitempty"`
	IPAddress   string    `json:"ip_address,omitempty"`
}

// SearchFilter represents filters for searching audit logs
type SearchFilter struct {
	StartTime *time.Time
	EndTime   *time.Time

	UserID     *int64
	Actions    []Action
	TargetType string
	TargetID   *int64
	IPAddress  string

	// Text matches details, case-insensitive
	Text string

	Limit  int
	Offset int

	// "asc" for oldest first, newest first otherwise
	SortOrder string
}

// ExportFormat represents the format for exporting audit logs
type ExportFormat string

const (
	ExportFormatJSON   ExportFormat = "json"
	ExportFormatCSV    ExportFormat = "csv"
	ExportFormatNDJSON ExportFormat = "ndjson"
)

// RetentionPolicy defines how long audit logs are kept
type RetentionPolicy struct {
	RetentionDays int
}

// DefaultRetentionPolicy keeps entries for a year
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{RetentionDays: 365}
}

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 {
	return &v
}
