package auth

import "time"

// User is a directory account. Users are deactivated, never deleted.
type User struct {
	ID              int64      `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	DisplayName     string     `json:"display_name"`
	Department      string     `json:"department,omitempty"`
	Location        string     `json:"location,omitempty"`
	Role            string     `json:"role,omitempty"`
	Manager         string     `json:"manager,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Active          bool       `json:"active"`
	IsAdmin         bool       `json:"is_admin"`
	CanManageGroups bool       `json:"can_manage_groups"`
	CreatedAt       time.Time  `json:"created_at"`
	LastLogin       *time.Time `json:"last_login,omitempty"`
}

// IsAuthenticated reports whether u refers to a persisted user
func (u *User) IsAuthenticated() bool {
	return u != nil && u.ID != 0
}

// IsElevated reports whether the user holds a role flag
func (u *User) IsElevated() bool {
	return u != nil && (u.IsAdmin || u.CanManageGroups)
}

// AuthContext holds authenticated user information for a request
type AuthContext struct {
	User      *User
	SessionID string
	ExpiresAt time.Time
}
