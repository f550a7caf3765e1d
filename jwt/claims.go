package jwt

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Registered claim names (RFC 7519 §4.1).
const (
	ClaimIssuer    = "iss"
	ClaimSubject   = "sub"
	ClaimAudience  = "aud"
	ClaimExpiresAt = "exp"
	ClaimNotBefore = "nbf"
	ClaimIssuedAt  = "iat"
	ClaimID        = "jti"
)

// Claims is the payload of a token. Values must be JSON-compatible: strings,
// numbers, booleans, nil, and nested maps or slices of those.
//
// Keys other than the registered claim names are opaque to this package and
// are carried through encode and decode unchanged. After a decode, JSON
// numbers are float64.
type Claims map[string]any

// Subject returns the sub claim, or "" when absent or not a string.
func (c Claims) Subject() string {
	s, _ := gojwt.MapClaims(c).GetSubject()
	return s
}

// Issuer returns the iss claim, or "" when absent or not a string.
func (c Claims) Issuer() string {
	s, _ := gojwt.MapClaims(c).GetIssuer()
	return s
}

// ID returns the jti claim, or "" when absent or not a string.
func (c Claims) ID() string {
	s, _ := c[ClaimID].(string)
	return s
}

// Audience returns the aud claim as a list. A single string audience is
// returned as a one-element slice.
func (c Claims) Audience() []string {
	aud, err := gojwt.MapClaims(c).GetAudience()
	if err != nil {
		return nil
	}
	return []string(aud)
}

// ExpiresAt returns the exp claim. ok is false when the claim is absent or
// is not a number.
func (c Claims) ExpiresAt() (t time.Time, ok bool) {
	t, present, err := c.numericDate(ClaimExpiresAt)
	return t, present && err == nil
}

// NotBefore returns the nbf claim. ok is false when the claim is absent or
// is not a number.
func (c Claims) NotBefore() (t time.Time, ok bool) {
	t, present, err := c.numericDate(ClaimNotBefore)
	return t, present && err == nil
}

// IssuedAt returns the iat claim. ok is false when the claim is absent or
// is not a number.
func (c Claims) IssuedAt() (t time.Time, ok bool) {
	t, present, err := c.numericDate(ClaimIssuedAt)
	return t, present && err == nil
}

// Strings returns the claim at key as a string slice. A single string is
// returned as a one-element slice; non-string elements are skipped.
func (c Claims) Strings(key string) []string {
	switch v := c[key].(type) {
	case string:
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// clone returns a shallow copy of c. Nested values are shared.
func (c Claims) clone() Claims {
	out := make(Claims, len(c)+2)
	for k, v := range c {
		out[k] = v
	}
	return out
}

// numericDate reads a NumericDate claim. It accepts the float64 produced by
// JSON decoding as well as the integer types callers put in claims before
// encoding.
func (c Claims) numericDate(key string) (t time.Time, present bool, err error) {
	v, ok := c[key]
	if !ok || v == nil {
		return time.Time{}, false, nil
	}

	var secs float64
	switch n := v.(type) {
	case float64:
		secs = n
	case float32:
		secs = float64(n)
	case int:
		return time.Unix(int64(n), 0), true, nil
	case int32:
		return time.Unix(int64(n), 0), true, nil
	case int64:
		return time.Unix(n, 0), true, nil
	case uint32:
		return time.Unix(int64(n), 0), true, nil
	case json.Number:
		secs, err = n.Float64()
		if err != nil {
			return time.Time{}, true, fmt.Errorf("%w: %s is not a number", ErrMalformed, key)
		}
	default:
		return time.Time{}, true, fmt.Errorf("%w: %s has type %T", ErrMalformed, key, v)
	}

	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return time.Time{}, true, fmt.Errorf("%w: %s is not finite", ErrMalformed, key)
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)), true, nil
}
