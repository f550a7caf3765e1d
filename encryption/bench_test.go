package encryption_test

import (
	"strings"
	"testing"

	"github.com/hasbyte1/go-secure-utils/encryption"
)

// The KDF dominates both operations; these benchmarks exist to catch
// parameter changes that push a call out of the tens-of-milliseconds range.

func BenchmarkEncrypt_1KB(b *testing.B) {
	plaintext := strings.Repeat("a", 1<<10)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := encryption.Encrypt(plaintext, "benchmark-password"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecrypt_1KB(b *testing.B) {
	envelope, err := encryption.Encrypt(strings.Repeat("a", 1<<10), "benchmark-password")
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := encryption.Decrypt(envelope, "benchmark-password"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDeriveKey(b *testing.B) {
	salt, _ := encryption.GenerateSalt()
	for i := 0; i < b.N; i++ {
		if _, err := encryption.DeriveKey([]byte("benchmark-password"), salt); err != nil {
			b.Fatal(err)
		}
	}
}
