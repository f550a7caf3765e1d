package auth

import (
	"context"
	"net/http"

	"github.com/hasbyte1/go-secure-utils/jwt"
)

type contextKey int

const authContextKey contextKey = iota

// AuthContext holds the authentication result for a single request. It is
// stored in the request context by the middleware and retrieved by
// downstream handlers via [FromRequest] or [FromContext].
type AuthContext struct {
	// Claims are the verified token claims. Treat them as read-only.
	Claims jwt.Claims

	// Token is the raw bearer token.
	Token string

	// RequestID correlates this request across log lines.
	RequestID string

	// Abilities are read from the configured abilities claim.
	Abilities []string
}

// Subject returns the sub claim.
func (ac *AuthContext) Subject() string {
	return ac.Claims.Subject()
}

// Can reports whether the token grants ability.
func (ac *AuthContext) Can(ability string) bool {
	return Can(ac.Abilities, ability)
}

// WithAuthContext returns a copy of ctx that carries the given [AuthContext].
func WithAuthContext(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

// FromContext retrieves the [AuthContext] stored in ctx.
// Returns nil if no AuthContext has been attached.
func FromContext(ctx context.Context) *AuthContext {
	ac, _ := ctx.Value(authContextKey).(*AuthContext)
	return ac
}

// FromRequest retrieves the [AuthContext] from the request's context.
// Returns nil if the [Authenticate] middleware has not run.
func FromRequest(r *http.Request) *AuthContext {
	return FromContext(r.Context())
}
