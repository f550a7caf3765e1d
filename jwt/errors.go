package jwt

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by codec operations.
//
// Use [errors.Is] for comparisons:
//
//	claims, err := jwt.Validate(token, secret, false)
//	if errors.Is(err, jwt.ErrExpired) {
//	    // ask the client to refresh
//	}
//
// Cryptographic rejections are deliberately bare: they never carry the reason
// a signature did not match.
var (
	// ErrInvalidArgument is returned for caller mistakes: nil claims, an empty
	// secret, a negative expiry, or claims that cannot be serialised to JSON.
	ErrInvalidArgument = errors.New("jwt: invalid argument")

	// ErrMalformed is returned when a token is not three non-empty base64url
	// segments, or when the header or payload is not a JSON object.
	ErrMalformed = errors.New("jwt: malformed token")

	// ErrSignatureInvalid is returned when the signature does not match the
	// header and payload under the supplied secret, or when the token names an
	// algorithm other than HS256.
	ErrSignatureInvalid = errors.New("jwt: signature invalid")

	// ErrExpired is returned when the exp claim lies in the past.
	ErrExpired = errors.New("jwt: token expired")

	// ErrNotYetValid is returned when the nbf claim lies in the future.
	ErrNotYetValid = errors.New("jwt: token not yet valid")
)

// State is a terminal state of token verification.
//
//	Received → StructurallyValid | Malformed
//	         → SignatureChecked (valid | SignatureInvalid)
//	         → TemporalChecked (Active | Expired | NotYetValid)
type State int

const (
	// StateActive means the token passed every check.
	StateActive State = iota
	// StateMalformed means the token could not be read at all.
	StateMalformed
	// StateSignatureInvalid means the token was readable but not signed with the secret.
	StateSignatureInvalid
	// StateExpired means the signature was valid but exp has passed.
	StateExpired
	// StateNotYetValid means the signature was valid but nbf is in the future.
	StateNotYetValid
)

var stateNames = map[State]string{
	StateActive:           "active",
	StateMalformed:        "malformed",
	StateSignatureInvalid: "signature_invalid",
	StateExpired:          "expired",
	StateNotYetValid:      "not_yet_valid",
}

// String returns the snake_case name of s, suitable for log fields.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// StateOf maps an error returned by [Codec.Validate] to its terminal state.
// A nil error is [StateActive]. A missing secret maps to
// [StateSignatureInvalid] because the signature cannot be proven.
func StateOf(err error) State {
	switch {
	case err == nil:
		return StateActive
	case errors.Is(err, ErrExpired):
		return StateExpired
	case errors.Is(err, ErrNotYetValid):
		return StateNotYetValid
	case errors.Is(err, ErrSignatureInvalid), errors.Is(err, ErrInvalidArgument):
		return StateSignatureInvalid
	default:
		return StateMalformed
	}
}
