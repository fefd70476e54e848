package types

// RoleAdmin is the role claim value that grants access to every user's resumes.
const RoleAdmin = "admin"

// Identity is the signed-in user as asserted by the hosted identity provider.
// It is read-only for this client and travels in the request context.
type Identity struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// SignedIn reports whether the identity carries a user ID.
func (i Identity) SignedIn() bool {
	return i.UserID != ""
}

// DisplayName returns the greeting name for the user.
func (i Identity) DisplayName() string {
	if i.FirstName == "" {
		return "User"
	}
	return i.FirstName
}
