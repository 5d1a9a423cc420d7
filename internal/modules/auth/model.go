package auth

import "strings"

// Role is the application-level role of a session.
type Role string

const (
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
	RoleGuest  Role = "guest"
)

// User is the session identity assembled from whichever backend shape
// produced it. It lives for the session and is discarded on logout.
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    Role   `json:"role"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// mapRole normalises backend role names. Unknown roles default to vendor,
// the least privileged authenticated role.
func mapRole(backendRole string) Role {
	switch strings.ToUpper(backendRole) {
	case "ADMIN":
		return RoleAdmin
	case "USER":
		return RoleVendor
	case "GUEST":
		return RoleGuest
	default:
		return RoleVendor
	}
}
