package auth

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Authenticate is a net/http-compatible middleware that authenticates every incoming
// request using the provided [Guard]. On success it injects the [AuthContext] into
// the request context and calls the next handler. On failure it writes a JSON error
// response and stops the chain.
//
// Use [FromRequest] in downstream handlers to retrieve the auth result.
func Authenticate(g *Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, err := g.Authenticate(r)
			if err != nil {
				g.writeError(w, r, err)
				return
			}
			w.Header().Set(RequestIDHeader, ac.RequestID)
			next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), ac)))
		})
	}
}

// RequireAbilities is a net/http-compatible middleware that enforces that the
// authenticated token has ALL of the specified abilities (AND logic).
//
// Must be applied after [Authenticate]. Returns 403 Forbidden when the
// ability check fails.
func RequireAbilities(abilities ...string) func(http.Handler) http.Handler {
	return requireAbilities(func(have []string) bool { return CanAll(have, abilities) })
}

// RequireAnyAbility is a net/http-compatible middleware that enforces that the
// authenticated token has AT LEAST ONE of the specified abilities (OR logic).
//
// Must be applied after [Authenticate]. Returns 403 Forbidden when the
// ability check fails.
func RequireAnyAbility(abilities ...string) func(http.Handler) http.Handler {
	return requireAbilities(func(have []string) bool { return CanAny(have, abilities) })
}

func requireAbilities(allowed func([]string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac := FromRequest(r)
			if ac == nil {
				writeJSONError(w, http.StatusUnauthorized, ErrUnauthorized.Error())
				return
			}
			if !allowed(ac.Abilities) {
				writeJSONError(w, http.StatusForbidden, ErrForbidden.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *Guard) writeError(w http.ResponseWriter, r *http.Request, err error) {
	g.setFailureHeaders(w.Header(), r, err)
	writeJSONError(w, statusFor(err), err.Error())
}

// setFailureHeaders adds the headers every adapter sends with a failed
// authentication: Retry-After when the client is throttled and a Bearer
// challenge when the token is missing or rejected.
func (g *Guard) setFailureHeaders(h http.Header, r *http.Request, err error) {
	if errors.Is(err, ErrTooManyAttempts) {
		if d := g.retryAfter(clientAddress(r, g.config.TrustProxyHeaders)); d > 0 {
			h.Set("Retry-After", retryAfterSeconds(d))
		}
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInvalidToken) {
		h.Set("WWW-Authenticate", "Bearer")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
