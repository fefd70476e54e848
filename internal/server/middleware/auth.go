// Package middleware provides HTTP middleware for authentication.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/resume-parser-web/internal/types"
)

// SessionCookie is the cookie the identity provider stores the session token in.
const SessionCookie = "__session"

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const identityKey ContextKey = "identity"

// TokenValidator verifies a session token and returns the identity it asserts.
type TokenValidator interface {
	ValidateToken(tokenString string) (types.Identity, error)
}

// tokenFromRequest returns the bearer token, or the session cookie when no
// Authorization header is present.
func tokenFromRequest(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		return parts[1], true
	}

	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func identify(v TokenValidator, r *http.Request) (types.Identity, bool) {
	token, ok := tokenFromRequest(r)
	if !ok {
		return types.Identity{}, false
	}
	id, err := v.ValidateToken(token)
	if err != nil || !id.SignedIn() {
		return types.Identity{}, false
	}
	return id, true
}

// Optional attaches the identity when the request carries a valid session and
// passes anonymous requests through unchanged.
func Optional(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := identify(v, r); ok {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware rejects requests without a valid session with 401 and adds
// the identity to the request context otherwise.
func AuthMiddleware(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := identify(v, r)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthorized"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// PageAuthMiddleware redirects requests without a valid session to signInURL.
func PageAuthMiddleware(v TokenValidator, signInURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := identify(v, r)
			if !ok {
				http.Redirect(w, r, signInURL, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id types.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity extracts the authenticated identity from the request context.
func GetIdentity(r *http.Request) (types.Identity, error) {
	id, ok := r.Context().Value(identityKey).(types.Identity)
	if !ok || !id.SignedIn() {
		return types.Identity{}, fmt.Errorf("identity not found in request context")
	}
	return id, nil
}
