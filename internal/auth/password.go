package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const pbkdf2Iterations = 100000

// HashPassword derives a pbkdf2-sha256 hash from the password. When salt is
// empty a fresh 16-byte hex salt is generated. Returns hash and salt, both
// hex encoded.
func HashPassword(password, salt string) (string, string, error) {
	if salt == "" {
		raw := make([]byte, 16)
		if _, err := rand.Read(raw); err != nil {
			return "", "", fmt.Errorf("generate salt: %w", err)
		}
		salt = hex.EncodeToString(raw)
	}
	key := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, 32, sha256.New)
	return hex.EncodeToString(key), salt, nil
}

// VerifyPassword re-derives the hash with the stored salt and compares in
// constant time.
func VerifyPassword(password, hash, salt string) bool {
	derived, _, err := HashPassword(password, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(derived), []byte(hash)) == 1
}
