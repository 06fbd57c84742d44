package entity

import "time"

// Role represents an authorization role
// Many-to-many with users via user_roles
type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	RoleAdmin   = "Admin"
	RoleStudent = "Student"
	RoleCompany = "Company"
)

// DefaultRole is the role granted to a freshly registered account of kind k.
func DefaultRole(k UserKind) string {
	if k == KindCompany {
		return RoleCompany
	}
	return RoleStudent
}
