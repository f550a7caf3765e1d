package jwt

import "time"

// ParsedToken is the result of [Codec.Parse]. It is built fresh on every
// call and never shared.
type ParsedToken struct {
	// Raw is the token exactly as supplied.
	Raw string

	// Header is the decoded first segment, normally {"alg":"HS256","typ":"JWT"}.
	Header map[string]any

	// Payload is the decoded claims. Unverified unless SignatureValid is true.
	Payload Claims

	// Signature is the third segment as it appeared on the wire (base64url).
	Signature string

	// SignatureValid is only meaningful after [Codec.ParseWithSecret].
	SignatureValid bool

	// Expired reports whether exp was in the past at parse time.
	Expired bool
}

// Algorithm returns the alg header, or "" when it is absent.
func (p *ParsedToken) Algorithm() string {
	alg, _ := p.Header["alg"].(string)
	return alg
}

var defaultCodec = New()

// Encode signs claims with secret using the default [Codec].
func Encode(claims Claims, secret []byte, expiresIn time.Duration) (string, error) {
	return defaultCodec.Encode(claims, secret, expiresIn)
}

// Decode reads the payload of token without verifying it. See [Codec.Decode].
func Decode(token string) (Claims, error) {
	return defaultCodec.Decode(token)
}

// Verify checks token against secret using the default [Codec].
func Verify(token string, secret []byte, ignoreExpiration bool) (Claims, bool) {
	return defaultCodec.Verify(token, secret, ignoreExpiration)
}

// Validate checks token against secret and reports why it was rejected.
func Validate(token string, secret []byte, ignoreExpiration bool) (Claims, error) {
	return defaultCodec.Validate(token, secret, ignoreExpiration)
}

// Parse decodes token for inspection using the default [Codec].
func Parse(token string) (*ParsedToken, error) {
	return defaultCodec.Parse(token)
}

// ParseWithSecret decodes token for inspection and checks its signature.
func ParseWithSecret(token string, secret []byte) (*ParsedToken, error) {
	return defaultCodec.ParseWithSecret(token, secret)
}
