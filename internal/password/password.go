// Package password wraps bcrypt hashing for stored credentials.
package password

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the cost the rest of the platform was provisioned with.
const bcryptCost = 10

// Hash produces a salted bcrypt hash of the plaintext. Hashing the same
// plaintext twice yields different strings; comparison must go through Verify.
func Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify reports whether plaintext matches the stored hash. A malformed hash
// is treated as a mismatch rather than an error.
func Verify(plaintext string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
