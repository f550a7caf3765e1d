package encryption

import (
	"bytes"
	"crypto/subtle"
)

// pkcs7Pad appends PKCS#7 padding to src so that its length is a multiple of
// blockSize. blockSize must be between 1 and 255 (AES uses 16).
//
// If len(src) is already a multiple of blockSize, a full extra block of padding
// is appended so that the padding can always be unambiguously removed.
func pkcs7Pad(src []byte, blockSize int) []byte {
	padding := blockSize - (len(src) % blockSize)
	out := make([]byte, len(src), len(src)+padding)
	copy(out, src)
	return append(out, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

// pkcs7Unpad removes PKCS#7 padding from src.
//
// CBC here is unauthenticated, so this check is what a wrong password trips
// over. It inspects the whole final block regardless of where the first bad
// byte is and returns the same bare error for every failure.
func pkcs7Unpad(src []byte, blockSize int) ([]byte, error) {
	length := len(src)
	if length == 0 || length%blockSize != 0 {
		return nil, ErrDecryptionFailed
	}

	padding := src[length-1]
	good := subtle.ConstantTimeLessOrEq(1, int(padding)) &
		subtle.ConstantTimeLessOrEq(int(padding), blockSize)

	tail := src[length-blockSize:]
	for i := 0; i < blockSize; i++ {
		// Bytes within the padding run must equal the padding value.
		inPad := subtle.ConstantTimeLessOrEq(blockSize-i, int(padding))
		match := subtle.ConstantTimeByteEq(tail[i], padding)
		good &= match | (inPad ^ 1)
	}
	if good != 1 {
		return nil, ErrDecryptionFailed
	}
	return src[:length-int(padding)], nil
}
