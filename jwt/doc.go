// Package jwt encodes, decodes and verifies compact HS256 tokens (RFC 7519).
//
// # Wire format
//
//	base64url(header) "." base64url(claims) "." base64url(HMAC-SHA256(secret, header "." claims))
//
// Segments use the URL-safe alphabet without "=" padding. The header is always
// {"alg":"HS256","typ":"JWT"}. The signature covers exactly the bytes that
// were emitted, so any change to any segment invalidates the token.
//
// # Quick start
//
//	token, err := jwt.Encode(jwt.Claims{"sub": "u1"}, secret, time.Hour)
//
//	claims, ok := jwt.Verify(token, secret, false)
//	if !ok {
//	    // reject; the reason is intentionally not exposed
//	}
//
// # Choosing an operation
//
//   - [Verify]: authorization. Boolean outcome, no reason given.
//   - [Validate]: same checks, but returns [ErrMalformed], [ErrSignatureInvalid],
//     [ErrExpired] or [ErrNotYetValid] for logging and metrics.
//   - [Decode]: reads claims WITHOUT verifying them. Never authorize on it.
//   - [Parse] / [ParseWithSecret]: diagnostics (header, raw signature, expiry flag).
//
// # Security notes
//
//   - Only HS256 is accepted; "none" and every other algorithm fail verification.
//   - Signatures are compared in constant time.
//   - Segments are decoded strictly, so non-canonical base64 is rejected.
//   - ignoreExpiration has no default; callers must state it. nbf is always
//     enforced.
//   - Secrets are parameters. Nothing in this package reads the environment.
package jwt
