package directory

import "github.com/frezendesp/GroupManagement/pkg/auth"

// Field names an editable profile attribute
type Field string

const (
	FieldDisplayName Field = "display_name"
	FieldLocation    Field = "location"
	FieldRole        Field = "role"
	FieldManager     Field = "manager"
	FieldDepartment  Field = "department"
	FieldPhone       Field = "phone"
)

// column lengths of the users table
var fieldMaxLen = map[Field]int{
	FieldDisplayName: 120,
	FieldLocation:    100,
	FieldRole:        100,
	FieldManager:     120,
	FieldDepartment:  100,
	FieldPhone:       20,
}

var (
	elevatedFields = []Field{FieldDisplayName, FieldLocation, FieldRole, FieldManager, FieldDepartment, FieldPhone}
	selfFields     = []Field{FieldPhone}
)

// SearchResult is the compact shape returned by the people picker
type SearchResult struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Department  string `json:"department"`
}

// ListFilter selects a page of active users
type ListFilter struct {
	Search     string
	Department string
	Page       int
}

// PageSize is the number of users per listing page
const PageSize = 20

// UserPage is one page of a user listing
type UserPage struct {
	Users    []*auth.User `json:"users"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Pages    int          `json:"pages"`
}

// UserDetail is a user together with what the viewer may edit
type UserDetail struct {
	User           *auth.User `json:"user"`
	EditableFields []Field    `json:"editable_fields"`
	CanEdit        bool       `json:"can_edit"`
}

// Stats are aggregate user counts
type Stats struct {
	TotalUsers  int64 `json:"total_users"`
	ActiveUsers int64 `json:"active_users"`
}
