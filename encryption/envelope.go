package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"fmt"
)

// Encrypt seals plaintext under password and returns the hex envelope
// salt||iv||ciphertext. Each call draws a new salt and IV.
//
// Possible errors: [ErrInvalidArgument].
func Encrypt(plaintext, password string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("%w: plaintext must not be empty", ErrInvalidArgument)
	}
	raw, err := seal([]byte(plaintext), []byte(password))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// Decrypt opens an envelope produced by [Encrypt].
//
// Possible errors: [ErrInvalidArgument] (empty password), [ErrMalformed]
// (not hex, or shorter than the salt and IV), [ErrDecryptionFailed]
// (everything else).
func Decrypt(envelope, password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password must not be empty", ErrInvalidArgument)
	}
	raw, err := decodeEnvelope([]byte(envelope))
	if err != nil {
		return "", err
	}
	out, err := open(raw, []byte(password))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// PasswordEncrypter binds a password to the [Encrypter] interface so that it
// can be injected where a keyed encrypter is expected. The password is
// cloned on ingestion. It is safe for concurrent use.
type PasswordEncrypter struct {
	password []byte
}

var (
	_ Encrypter         = (*PasswordEncrypter)(nil)
	_ EnvelopeInspector = (*PasswordEncrypter)(nil)
)

// NewPasswordEncrypter constructs a [PasswordEncrypter].
func NewPasswordEncrypter(password string) (*PasswordEncrypter, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password must not be empty", ErrInvalidArgument)
	}
	return &PasswordEncrypter{password: cloneBytes([]byte(password))}, nil
}

// GetCipher returns [AES256CBC].
func (e *PasswordEncrypter) GetCipher() Cipher { return AES256CBC }

// Encrypt seals value and returns the hex envelope as bytes.
func (e *PasswordEncrypter) Encrypt(value []byte) ([]byte, error) {
	if len(value) == 0 {
		return nil, fmt.Errorf("%w: plaintext must not be empty", ErrInvalidArgument)
	}
	raw, err := seal(value, e.password)
	if err != nil {
		return nil, err
	}
	out := make([]byte, hex.EncodedLen(len(raw)))
	hex.Encode(out, raw)
	return out, nil
}

// EncryptString is a convenience wrapper around [PasswordEncrypter.Encrypt].
func (e *PasswordEncrypter) EncryptString(value string) (string, error) {
	out, err := e.Encrypt([]byte(value))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Decrypt opens a hex envelope.
func (e *PasswordEncrypter) Decrypt(envelope []byte) ([]byte, error) {
	raw, err := decodeEnvelope(envelope)
	if err != nil {
		return nil, err
	}
	return open(raw, e.password)
}

// DecryptString is a convenience wrapper around [PasswordEncrypter.Decrypt].
func (e *PasswordEncrypter) DecryptString(envelope string) (string, error) {
	out, err := e.Decrypt([]byte(envelope))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// AppearsEncrypted reports whether envelope is hex of the right shape: a
// salt, an IV and at least one whole cipher block.
//
// Implements [EnvelopeInspector].
func (e *PasswordEncrypter) AppearsEncrypted(envelope []byte) bool {
	raw, err := decodeEnvelope(envelope)
	if err != nil {
		return false
	}
	n := len(raw) - headerSize
	return n > 0 && n%aes.BlockSize == 0
}

// seal returns the binary envelope salt||iv||ciphertext.
func seal(plaintext, password []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: password must not be empty", ErrInvalidArgument)
	}

	salt, err := GenerateSalt()
	if err != nil {
		return nil, err
	}
	iv, err := randomBytes(IVSize)
	if err != nil {
		return nil, err
	}

	key, err := DeriveKey(password, salt)
	if err != nil {
		return nil, err
	}
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("encryption: failed to create AES cipher: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, headerSize+len(padded))
	copy(out, salt)
	copy(out[SaltSize:], iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[headerSize:], padded)
	zero(padded)
	return out, nil
}

// open reverses seal.
func open(raw, password []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: password must not be empty", ErrInvalidArgument)
	}

	salt := raw[:SaltSize]
	iv := raw[SaltSize:headerSize]
	ciphertext := raw[headerSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrDecryptionFailed
	}

	key, err := DeriveKey(password, salt)
	if err != nil {
		return nil, err
	}
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)
	return pkcs7Unpad(plaintext, aes.BlockSize)
}

// decodeEnvelope hex-decodes envelope and checks it holds at least a salt and
// an IV. Upper-case hex is accepted.
func decodeEnvelope(envelope []byte) ([]byte, error) {
	raw := make([]byte, hex.DecodedLen(len(envelope)))
	if _, err := hex.Decode(raw, envelope); err != nil {
		return nil, ErrMalformed
	}
	if len(raw) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the %d-byte salt and IV", ErrMalformed, len(raw), headerSize)
	}
	return raw, nil
}
