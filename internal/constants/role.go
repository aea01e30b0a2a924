package constants

// Role is an admin operator's permission level.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) String() string {
	return string(r)
}

var roleMap = map[string]Role{
	"admin":       RoleAdmin,
	"super_admin": RoleSuperAdmin,
}

// ParseRole returns the Role for s, or false if s names no known role.
func ParseRole(s string) (Role, bool) {
	r, ok := roleMap[s]
	return r, ok
}

// Satisfies reports whether an operator holding r may perform an action
// requiring the given role. A super_admin satisfies every requirement.
func (r Role) Satisfies(required Role) bool {
	if r == RoleSuperAdmin {
		return true
	}
	return r == required
}
