package models

import "time"

// UserRole defines access levels for the back-office forms.
type UserRole string

const (
	// RoleUser can submit requests and browse the catalog.
	RoleUser UserRole = "USER"
	// RoleAdmin can additionally approve/reject requests and use the
	// keyword manager.
	RoleAdmin UserRole = "ADMIN"
	// RoleSuperAdmin can additionally execute approved requests against
	// the catalog.
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
)

// User is a row in the static credential table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
}
