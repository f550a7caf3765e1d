// Package auth authenticates requests that carry HS256 bearer tokens issued by
// package jwt, and exposes the result to handlers through the request context.
//
// Secrets are injected through [Config]; nothing in the request path reads the
// environment. [LoadConfig] is a startup helper for processes that keep their
// configuration in environment variables or a .env file.
//
// # Token sources
//
// The token is read from "Authorization: Bearer <token>". When
// [Config.CookieName] is set, a cookie with that name is used as a fallback.
//
// # Middleware
//
// [Authenticate], [RequireAbilities] and [RequireAnyAbility] are net/http
// middleware. [GinMiddleware] adapts the same [Guard] to gin, and
// [UnaryServerInterceptor] / [StreamServerInterceptor] to gRPC.
//
// # Failure reporting
//
// Every rejected token surfaces to the client as [ErrInvalidToken], whatever
// the reason. The reason (malformed, signature_invalid, expired, …) is only
// written to the structured log and passed to [EventListener]s.
package auth

import "errors"

var (
	// ErrUnauthorized is returned when the request carries no token.
	ErrUnauthorized = errors.New("auth: unauthorized")

	// ErrInvalidToken is returned for every token the guard rejects: bad
	// structure, bad signature, expired, not yet valid, or claims that fail
	// the configured checks.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrForbidden is returned when authentication succeeded but the token
	// lacks a required ability.
	ErrForbidden = errors.New("auth: forbidden")

	// ErrTooManyAttempts is returned when a client has exhausted its budget of
	// failed attempts.
	ErrTooManyAttempts = errors.New("auth: too many failed attempts")

	// ErrInvalidConfig is returned by [NewGuard] and [LoadConfig] when the
	// configuration is unusable.
	ErrInvalidConfig = errors.New("auth: invalid configuration")
)
