package encryption

// Encrypter is the interface satisfied by [PasswordEncrypter]. Consumers that
// only need to seal and open values should depend on it rather than on the
// concrete type.
type Encrypter interface {
	// Encrypt encrypts arbitrary bytes and returns the hex envelope.
	Encrypt(value []byte) ([]byte, error)

	// EncryptString is a convenience wrapper around Encrypt for string values.
	EncryptString(value string) (string, error)

	// Decrypt opens a hex envelope previously produced by Encrypt and returns
	// the original plaintext bytes.
	Decrypt(envelope []byte) ([]byte, error)

	// DecryptString is a convenience wrapper around Decrypt for string values.
	DecryptString(envelope string) (string, error)

	// GetCipher returns the cipher identifier used by this encrypter.
	GetCipher() Cipher
}

// EnvelopeInspector is an optional interface for backends that can cheaply
// tell whether a value looks like one of their envelopes without running the
// KDF.
type EnvelopeInspector interface {
	// AppearsEncrypted returns true if envelope has the expected hex encoding
	// and length. It does not attempt decryption.
	AppearsEncrypted(envelope []byte) bool
}
