// internal/pkg/password/password.go
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hash derives a salted bcrypt digest from a plaintext password.
// The plaintext is never stored or logged.
func Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// Verify reports whether plain matches the stored digest.
func Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
