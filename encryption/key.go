package encryption

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

// GenerateSalt returns [SaltSize] cryptographically random bytes.
func GenerateSalt() ([]byte, error) {
	return randomBytes(SaltSize)
}

// DeriveKey stretches password into a [KeySize]-byte AES key using scrypt with
// the package's fixed cost parameters. The same password and salt always
// produce the same key.
//
// Example:
//
//	salt, _ := encryption.GenerateSalt()
//	key, err := encryption.DeriveKey([]byte(password), salt)
func DeriveKey(password, salt []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: password must not be empty", ErrInvalidArgument)
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrInvalidArgument, SaltSize, len(salt))
	}
	key, err := scrypt.Key(password, salt, ScryptN, ScryptR, ScryptP, KeySize)
	if err != nil {
		return nil, fmt.Errorf("encryption: key derivation failed: %w", err)
	}
	return key, nil
}

// randomBytes returns n cryptographically random bytes from crypto/rand.
// It is used internally for salt and IV generation.
func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("encryption: failed to generate %d random bytes: %w", n, err)
	}
	return b, nil
}

// zero overwrites b so derived keys do not linger in memory.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// cloneBytes returns a fresh copy of b. Used to ensure callers cannot
// mutate a password stored inside an encrypter.
func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
