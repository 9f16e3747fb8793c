package models

import "time"

// User statuses.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User represents an application user stored in the users table. Permission
// is a denormalized snapshot of the role's permission set taken at assignment
// time. Users are soft-deleted; the hard-delete path is explicit.
type User struct {
	ID           string        `db:"id" json:"id"`
	FullName     string        `db:"full_name" json:"full_name"`
	Email        string        `db:"email" json:"email"`
	PasswordHash string        `db:"password_hash" json:"-"`
	RoleID       string        `db:"role_id" json:"role"`
	Status       string        `db:"status" json:"status"`
	IsBlocked    bool          `db:"is_blocked" json:"is_blocked"`
	IsDeleted    bool          `db:"is_deleted" json:"is_deleted"`
	Permission   PermissionSet `db:"permission" json:"permission"`
	LastLogin    *time.Time    `db:"last_login" json:"last_login,omitempty"`
	FirebaseID   *string       `db:"firebase_id" json:"firebase_id,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// UserInfo describes a user in auth responses.
type UserInfo struct {
	ID         string        `json:"id"`
	FullName   string        `json:"full_name"`
	Email      string        `json:"email"`
	Role       string        `json:"role"`
	Permission PermissionSet `json:"permission,omitempty"`
}

// Info projects the public view of the user.
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		Role:       u.RoleID,
		Permission: u.Permission,
	}
}
