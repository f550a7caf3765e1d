package encryption

import "errors"

// Sentinel errors returned by encryption operations.
//
// Callers should use errors.Is for comparisons:
//
//	_, err := encryption.Decrypt(envelope, password)
//	if errors.Is(err, encryption.ErrDecryptionFailed) {
//	    // wrong password or corrupted data; the two are indistinguishable
//	}
var (
	// ErrInvalidArgument is returned for caller mistakes such as an empty
	// password or an empty plaintext.
	ErrInvalidArgument = errors.New("encryption: invalid argument")

	// ErrMalformed is returned when an envelope is not hex or is shorter than
	// its fixed salt and IV prefix.
	ErrMalformed = errors.New("encryption: malformed envelope")

	// ErrDecryptionFailed is returned for every cryptographic failure during
	// decryption: wrong password, truncated or misaligned ciphertext, bad
	// padding. It never says which.
	ErrDecryptionFailed = errors.New("encryption: decryption failed")
)
