package domain

// Role constants define the known user roles. Roles are stored as free-form
// strings; these constants cover the set the service assigns and checks.
const (
	RoleUser      = "user"
	RoleLibrarian = "librarian"
	RoleAdmin     = "admin"
)

// ValidRoles returns the set of known user roles.
func ValidRoles() []string {
	return []string{RoleUser, RoleLibrarian, RoleAdmin}
}

// IsValidRole checks whether the given role string is a known user role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}
