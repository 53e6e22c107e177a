package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// MatchEmail compares emails trimmed and case-insensitively.
func MatchEmail(stored, supplied string) bool {
	stored = strings.TrimSpace(stored)
	return stored != "" && strings.EqualFold(stored, strings.TrimSpace(supplied))
}

// MatchPassword compares a supplied password with a credentials cell. Both sides are
// trimmed and compared exactly; cells holding a bcrypt hash are verified with bcrypt.
func MatchPassword(stored, supplied string) bool {
	stored = strings.TrimSpace(stored)
	supplied = strings.TrimSpace(supplied)
	if stored == "" || supplied == "" {
		return false
	}
	if isBcryptHash(stored) {
		return ComparePassword(stored, supplied) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && strings.HasPrefix(s, "$2")
}
