package jwt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

const (
	// Algorithm is the only signing algorithm produced or accepted.
	Algorithm = "HS256"
	// Type is the typ header value of every token.
	Type = "JWT"
)

// Option is a functional option for configuring a [Codec].
type Option func(*Codec)

// WithClock replaces the time source used for iat, exp and nbf. It is
// intended for tests that need to move past an expiry instant.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLeeway tolerates clock drift between issuer and verifier when checking
// exp and nbf. Negative values are ignored.
//
// Without leeway a token is valid through the whole second named by exp and
// rejected from the next one, since the clock is read in whole seconds.
func WithLeeway(d time.Duration) Option {
	return func(c *Codec) {
		if d >= 0 {
			c.leeway = d
		}
	}
}

// Codec encodes, decodes and verifies HS256 tokens.
//
// A Codec holds no secrets and no per-call state; the secret is an argument
// of every operation. It is safe for concurrent use by multiple goroutines.
type Codec struct {
	now    func() time.Time
	leeway time.Duration
	parser *gojwt.Parser
}

// New constructs a [Codec]. Without options it uses time.Now and no leeway.
func New(opts ...Option) *Codec {
	c := &Codec{now: time.Now}
	for _, o := range opts {
		o(c)
	}
	// Temporal claims are checked by the codec itself so that exp and nbf
	// failures can be told apart and expiry can be ignored on request.
	c.parser = gojwt.NewParser(
		gojwt.WithValidMethods([]string{Algorithm}),
		gojwt.WithStrictDecoding(),
		gojwt.WithoutClaimsValidation(),
	)
	return c
}

// Encode signs claims with secret and returns the compact token.
//
// The claims are copied; iat is set to the current time in whole seconds.
// When expiresIn is positive, exp is set to iat+expiresIn, replacing any exp
// supplied by the caller. expiresIn is truncated to whole seconds and must be
// zero (no expiry) or at least one second.
func (c *Codec) Encode(claims Claims, secret []byte, expiresIn time.Duration) (string, error) {
	if claims == nil {
		return "", fmt.Errorf("%w: claims must not be nil", ErrInvalidArgument)
	}
	if len(secret) == 0 {
		return "", fmt.Errorf("%w: secret must not be empty", ErrInvalidArgument)
	}
	if expiresIn < 0 || (expiresIn > 0 && expiresIn < time.Second) {
		return "", fmt.Errorf("%w: expiry must be zero or at least one second, got %v", ErrInvalidArgument, expiresIn)
	}

	payload := claims.clone()
	iat := c.now().Unix()
	payload[ClaimIssuedAt] = iat
	if expiresIn > 0 {
		payload[ClaimExpiresAt] = iat + int64(expiresIn/time.Second)
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims(payload))
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return signed, nil
}

// Decode returns the payload of token WITHOUT checking its signature.
//
// The result is attacker-controlled data. Never base an authorization
// decision on it; use [Codec.Verify] instead.
func (c *Codec) Decode(token string) (Claims, error) {
	pt, err := c.parseUnverified(token)
	if err != nil {
		return nil, err
	}
	return pt.Payload, nil
}

// Verify checks the signature of token under secret and, unless
// ignoreExpiration is set, its exp claim; nbf is always enforced. It returns
// the claims and true only when every check passes.
//
// Verify never reports why a token was rejected. Use [Codec.Validate] when
// the reason is needed, e.g. to log it.
func (c *Codec) Verify(token string, secret []byte, ignoreExpiration bool) (Claims, bool) {
	claims, err := c.Validate(token, secret, ignoreExpiration)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// Validate is [Codec.Verify] with the rejection reason. The signature is
// always checked before any temporal claim.
//
// Possible errors: [ErrInvalidArgument], [ErrMalformed],
// [ErrSignatureInvalid], [ErrExpired], [ErrNotYetValid].
func (c *Codec) Validate(token string, secret []byte, ignoreExpiration bool) (Claims, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: secret must not be empty", ErrInvalidArgument)
	}
	if _, err := splitSegments(token); err != nil {
		return nil, err
	}

	claims := gojwt.MapClaims{}
	if _, err := c.parser.ParseWithClaims(token, claims, staticKey(secret)); err != nil {
		if errors.Is(err, gojwt.ErrTokenSignatureInvalid) || errors.Is(err, gojwt.ErrTokenUnverifiable) {
			return nil, ErrSignatureInvalid
		}
		return nil, ErrMalformed
	}

	out := Claims(claims)
	if err := c.checkTemporal(out, ignoreExpiration); err != nil {
		return nil, err
	}
	return out, nil
}

// Parse decodes token for inspection without checking its signature and
// reports whether it has expired. An exp claim that is not a number counts
// as expired. Only structural problems return [ErrMalformed].
func (c *Codec) Parse(token string) (*ParsedToken, error) {
	pt, err := c.parseUnverified(token)
	if err != nil {
		return nil, err
	}
	exp, present, err := pt.Payload.numericDate(ClaimExpiresAt)
	pt.Expired = err != nil || (present && c.seconds().After(exp.Add(c.leeway)))
	return pt, nil
}

// ParseWithSecret is [Codec.Parse] that additionally reports whether the
// signature matches secret. Temporal claims do not affect SignatureValid.
func (c *Codec) ParseWithSecret(token string, secret []byte) (*ParsedToken, error) {
	pt, err := c.Parse(token)
	if err != nil {
		return nil, err
	}
	if len(secret) > 0 {
		_, err := c.parser.ParseWithClaims(token, gojwt.MapClaims{}, staticKey(secret))
		pt.SignatureValid = err == nil
	}
	return pt, nil
}

// parseUnverified reads the header and payload without looking at alg, so
// that tokens from other issuers can still be inspected.
func (c *Codec) parseUnverified(token string) (*ParsedToken, error) {
	parts, err := splitSegments(token)
	if err != nil {
		return nil, err
	}
	var header map[string]any
	if err := decodeObject(c.parser, parts[0], &header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}
	var claims Claims
	if err := decodeObject(c.parser, parts[1], &claims); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformed, err)
	}
	return &ParsedToken{
		Raw:       token,
		Header:    header,
		Payload:   claims,
		Signature: parts[2],
	}, nil
}

// decodeObject base64url-decodes seg and unmarshals it into the map at dst.
// JSON null is rejected along with every other non-object value.
func decodeObject[M ~map[string]any](p *gojwt.Parser, seg string, dst *M) error {
	raw, err := p.DecodeSegment(seg)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return err
	}
	if *dst == nil {
		return errors.New("not a JSON object")
	}
	return nil
}

func (c *Codec) checkTemporal(claims Claims, ignoreExpiration bool) error {
	now := c.seconds()

	if !ignoreExpiration {
		exp, present, err := claims.numericDate(ClaimExpiresAt)
		if err != nil {
			return err
		}
		if present && now.After(exp.Add(c.leeway)) {
			return ErrExpired
		}
	}

	nbf, present, err := claims.numericDate(ClaimNotBefore)
	if err != nil {
		return err
	}
	if present && now.Add(c.leeway).Before(nbf) {
		return ErrNotYetValid
	}
	return nil
}

// seconds returns the current time truncated to whole seconds, the
// resolution of iat, exp and nbf.
func (c *Codec) seconds() time.Time {
	return time.Unix(c.now().Unix(), 0)
}

// splitSegments requires exactly three non-empty dot-separated segments.
func splitSegments(token string) ([]string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformed, len(parts))
	}
	for i, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: segment %d is empty", ErrMalformed, i)
		}
	}
	return parts, nil
}

func staticKey(secret []byte) gojwt.Keyfunc {
	return func(*gojwt.Token) (any, error) {
		return secret, nil
	}
}
