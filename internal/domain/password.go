package domain

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// IsHashedPassword reports whether the stored value looks like a bcrypt hash.
func IsHashedPassword(stored string) bool {
	for _, p := range bcryptPrefixes {
		if strings.HasPrefix(stored, p) {
			return true
		}
	}
	return false
}

// CheckPassword compares a submitted password with the stored one.
// Stored values are plaintext unless the operator replaced them with a
// bcrypt hash, in which case bcrypt verifies them.
func CheckPassword(stored, submitted string) bool {
	if submitted == "" {
		return false
	}
	if IsHashedPassword(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(submitted)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
