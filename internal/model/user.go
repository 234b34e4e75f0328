package model

import "time"

// User roles. Everyone starts unauthorized and is promoted by an admin
// (or by entering the admin code).
const (
	RoleUnauthorized = "unauthorized"
	RoleMember       = "member"
	RoleAdmin        = "admin"
)

type User struct {
	ID          int64     `json:"id"`
	ChatID      int64     `json:"chat_id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Locale      string    `json:"locale"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Authorized reports whether the user may read and mutate lists.
func (u *User) Authorized() bool {
	return u.Role == RoleMember || u.Role == RoleAdmin
}

// IsAdmin reports whether the user may moderate suggestions, manage
// categories, broadcast, and change list lifecycle state.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
