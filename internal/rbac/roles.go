package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
// Matching is exact and case-sensitive; there is no hierarchy.
const (
	RoleAdmin        = "ADMIN"
	RoleSuperAdmin   = "SUPER_ADMIN"
	RoleUser         = "USER"
	RoleManager      = "MANAGER"
	RolePlatformUser = "PLATFORM_USER"
)

// IsPrivileged reports roles that pass ownership checks on any resource.
// Only ownership checks consult this; declared role sets never do.
func IsPrivileged(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// IsKnown reports whether role is one of the role names above.
func IsKnown(role string) bool {
	switch role {
	case RoleAdmin, RoleSuperAdmin, RoleUser, RoleManager, RolePlatformUser:
		return true
	default:
		return false
	}
}
