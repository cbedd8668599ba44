package domain

// Role is the single privilege level assigned to a user.
type Role string

const (
	RoleFaculty          Role = "faculty"
	RoleCoordinator      Role = "coordinator"
	RoleChiefCoordinator Role = "chief_coordinator"
	RolePrincipal        Role = "principal"
)

// Roles lists the closed set of roles.
var Roles = []Role{RoleFaculty, RoleCoordinator, RoleChiefCoordinator, RolePrincipal}

// Valid reports whether r belongs to the closed set.
func (r Role) Valid() bool {
	for _, candidate := range Roles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanDecideLeave reports whether the role may approve or reject leave requests.
func (r Role) CanDecideLeave() bool {
	return r == RoleCoordinator || r == RoleChiefCoordinator || r == RolePrincipal
}

// CanViewAllLeaves reports whether the role sees every leave request.
func (r Role) CanViewAllLeaves() bool {
	return r.CanDecideLeave()
}

// IsAdmin reports whether the role may manage other accounts.
func (r Role) IsAdmin() bool {
	return r == RoleChiefCoordinator || r == RolePrincipal
}
