package dashboard

import (
	"strings"

	"github.com/jonathan/resume-parser-web/internal/types"
)

// LegacyAdminUserID is the administrator account used when no allow-list is configured.
const LegacyAdminUserID = "user_2tigW5R55TpwNr6EMewCrhcH6vK"

// Authorizer decides which identities may list every user's resumes.
type Authorizer struct {
	admins map[string]struct{}
}

// NewAuthorizer creates an authorizer for the given administrator user IDs.
// Blank entries are ignored.
func NewAuthorizer(adminUserIDs []string) *Authorizer {
	a := &Authorizer{admins: make(map[string]struct{}, len(adminUserIDs))}
	for _, id := range adminUserIDs {
		if id = strings.TrimSpace(id); id != "" {
			a.admins[id] = struct{}{}
		}
	}
	return a
}

// IsAdmin reports whether id carries the admin role claim or is on the allow-list.
func (a *Authorizer) IsAdmin(id types.Identity) bool {
	if !id.SignedIn() {
		return false
	}
	if id.Role == types.RoleAdmin {
		return true
	}
	_, ok := a.admins[id.UserID]
	return ok
}
