// Package cryptox hashes account passwords with argon2id.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Changing them invalidates stored hashes.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	KeyLen       = 32
	SaltLen      = 16
)

// NewSalt returns SaltLen random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("read random salt: %w", err)
	}
	return salt, nil
}

// HashPassword derives the stored hash of password under salt.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, KeyLen)
}

// VerifyPassword reports whether password hashes to hash under salt. The
// comparison runs in constant time.
func VerifyPassword(hash, password, salt []byte) bool {
	return subtle.ConstantTimeCompare(hash, HashPassword(password, salt)) == 1
}
