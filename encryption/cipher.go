// Package encryption provides password-based AES-256-CBC encryption with an
// scrypt-derived key.
//
// # Envelope format
//
// Every encrypted value is a single lowercase hex string whose bytes are:
//
//	[salt:16][iv:16][ciphertext:N]
//
// The ciphertext is AES-256-CBC with PKCS#7 padding, so N is a non-zero
// multiple of 16. The key is scrypt(password, salt, N=16384, r=8, p=1, 32).
// Nothing but the password is needed to decrypt; all parameters are fixed.
//
// # Quick start
//
//	envelope, err := encryption.Encrypt("card ending 4242", password)
//	plaintext, err := encryption.Decrypt(envelope, password)
//
// # Security notes
//
//   - A fresh random salt and IV are drawn from crypto/rand for every call, so
//     encrypting the same value twice never yields the same envelope.
//   - The KDF is deliberately slow (tens of milliseconds); budget for it on
//     request paths.
//   - A wrong password, a corrupted envelope and bad padding all surface as the
//     same [ErrDecryptionFailed].
//   - CBC is not authenticated. Store envelopes where integrity is already
//     guaranteed, or wrap them in a MAC.
//   - Derived keys are zeroed after use.
package encryption

import "crypto/aes"

// Cipher names the encryption algorithm and operating mode.
// The string value is lowercase to match OpenSSL conventions.
type Cipher string

// AES256CBC is the only cipher this package produces or accepts.
const AES256CBC Cipher = "aes-256-cbc"

const (
	// SaltSize is the length of the random scrypt salt at the start of an envelope.
	SaltSize = 16

	// IVSize is the length of the CBC initialisation vector that follows the salt.
	IVSize = aes.BlockSize

	// KeySize is the length of the derived AES-256 key.
	KeySize = 32

	// headerSize is the fixed prefix of every envelope.
	headerSize = SaltSize + IVSize
)

// scrypt cost parameters. They are shared by encryption and decryption and
// are not negotiable per call; changing them makes existing envelopes
// undecryptable.
const (
	ScryptN = 1 << 14
	ScryptR = 8
	ScryptP = 1
)
