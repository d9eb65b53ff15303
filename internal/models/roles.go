package models

const (
	// RoleUser is assigned to every account at registration.
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IsAdmin reports whether the role may manage other accounts.
func IsAdmin(role string) bool {
	return role == RoleAdmin
}
