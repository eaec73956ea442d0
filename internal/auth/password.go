package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordChecker accepts the admin password, either compared against a
// bcrypt hash or, when no hash is configured, against the plain value.
type PasswordChecker struct {
	plain string
	hash  []byte
}

func NewPasswordChecker(plain, hash string) *PasswordChecker {
	pc := &PasswordChecker{plain: plain}
	if h := strings.TrimSpace(hash); h != "" {
		pc.hash = []byte(h)
	}
	return pc
}

// Check trims the submitted value. An empty password never matches.
func (p *PasswordChecker) Check(submitted string) bool {
	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return false
	}
	if p.hash != nil {
		return bcrypt.CompareHashAndPassword(p.hash, []byte(submitted)) == nil
	}
	if p.plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(p.plain)) == 1
}

// HashPassword produces a value suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(password)), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// APIKeyMatches compares an X-API-Key header value with the configured key.
// No key configured means API-key access is disabled.
func APIKeyMatches(configured, provided string) bool {
	if configured == "" || provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(provided)) == 1
}
