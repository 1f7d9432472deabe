package model

import "fmt"

// Role is a staff permission level.
type Role string

// Staff roles, lowest privilege first.
const (
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStaff, RoleManager, RoleAdmin:
		return Role(s), nil
	case "":
		return RoleStaff, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// IsManager reports whether the role may open staff management.
func (r Role) IsManager() bool {
	return r == RoleManager || r == RoleAdmin
}

// Identity is the authenticated staff member attached to a session.
type Identity struct {
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	Role        Role   `json:"role"`
	ID          int    `json:"id"`
}

// StaffRecord is an account as listed by staff management.
type StaffRecord struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
	CreatedAt   string `json:"created_at,omitempty"`
	LastLogin   string `json:"last_login,omitempty"`
	ID          int    `json:"id"`
	Active      bool   `json:"active"`
}

// CanManage reports whether actor may edit or disable target.
// Nobody manages themselves here; managers only manage plain staff.
func CanManage(actor Identity, target StaffRecord) bool {
	if actor.ID == target.ID {
		return false
	}
	return actor.Role == RoleAdmin || target.Role == RoleStaff
}

// CanAssign reports whether actor may give an account the role.
func CanAssign(actor Identity, role Role) bool {
	if role == RoleAdmin {
		return actor.Role == RoleAdmin
	}
	return actor.Role.IsManager()
}
