package models

// Role identifies which part of the system a user may act on.
type Role string

const (
	RoleIssuer   Role = "issuer"
	RoleHolder   Role = "holder"
	RoleVerifier Role = "verifier"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleIssuer, RoleHolder, RoleVerifier:
		return true
	}
	return false
}

// User is the public identity of a registered account.
// It is what the session keeps under the "authUser" key.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// RegisteredUser is an entry of the "registeredUsers" collection.
type RegisteredUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// Identity strips the credential from a registered user.
func (u RegisteredUser) Identity() User {
	return User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}
