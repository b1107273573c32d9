package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashSecret hashes a shared secret (root password, lead access key) with bcrypt.
// An empty secret yields an empty hash, which never matches.
func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", nil
	}
	b, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	return string(b), err
}

// CheckSecret compares a plain secret with its bcrypt hash.
func CheckSecret(plain, hashed string) bool {
	if hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
