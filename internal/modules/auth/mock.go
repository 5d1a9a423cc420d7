package auth

import "golang.org/x/crypto/bcrypt"

// Demo credentials for mock/demo mode. The admin password is verified with
// bcrypt like a real credential; any other well-formed login is accepted as
// a vendor session.
const (
	DemoAdminEmail    = "admin@pvc.com"
	DemoAdminPassword = "AdminDemo123!"
)

// Synthetic mock-mode session tokens. CurrentUser derives the canned user
// from the token's value, mirroring how live mode derives it from the JWT.
const (
	mockAdminToken     = "mock-admin-token"
	mockVendorToken    = "mock-vendor-token"
	mockNewUserToken   = "mock-new-user-token"
	mockRefreshedToken = "mock-refreshed-token"
)

// Hashed at init so the mock path exercises the same credential check as
// the live stub. MinCost keeps start-up cheap; these are demo credentials.
var demoAdminHash = mustHash(DemoAdminPassword)

func mustHash(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic("auth: hashing demo password: " + err.Error())
	}
	return hash
}

func adminUser() *User {
	return &User{
		ID:    "1",
		Email: DemoAdminEmail,
		Name:  "System Administrator",
		Role:  RoleAdmin,
	}
}

func vendorUser(email string) *User {
	return &User{
		ID:      "2",
		Email:   email,
		Name:    "Vendor User",
		Role:    RoleVendor,
		Company: "ABC Construction",
		Phone:   "+1234567890",
	}
}

func guestUser() *User {
	return &User{
		ID:    "3",
		Email: "guest@example.com",
		Name:  "Guest User",
		Role:  RoleGuest,
	}
}
