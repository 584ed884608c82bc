package model

import "strings"

// Role is the closed set of account roles. Registration, staff typing and
// notification targeting all validate against this enumeration.
type Role string

const (
	RolePrincipal    Role = "principal"
	RoleClassTeacher Role = "class_teacher"
	RoleTeacher      Role = "teacher"
	RoleAccountant   Role = "accountant"
	RoleAdmin        Role = "admin"
	RoleParent       Role = "parent"
	RoleStudent      Role = "student"
	RoleOtherStaff   Role = "other_staff"
)

var roles = map[Role]bool{
	RolePrincipal:    true,
	RoleClassTeacher: true,
	RoleTeacher:      true,
	RoleAccountant:   true,
	RoleAdmin:        true,
	RoleParent:       true,
	RoleStudent:      true,
	RoleOtherStaff:   true,
}

// ParseRole normalizes and validates a role string.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.TrimSpace(strings.ToLower(raw)))
	return role, roles[role]
}

func (r Role) String() string { return string(r) }

// IsStaffRole reports whether the role belongs in the staff table.
func (r Role) IsStaffRole() bool {
	switch r {
	case RolePrincipal, RoleClassTeacher, RoleTeacher, RoleAccountant, RoleAdmin, RoleOtherStaff:
		return true
	default:
		return false
	}
}
