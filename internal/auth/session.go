// Package auth holds the admin credential checks and the session token.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionCookie  = "admin_session"
	sessionSubject = "admin"
	sessionIssuer  = "leaddesk"
)

var ErrInvalidSession = errors.New("invalid admin session")

// SessionManager issues and verifies the HS256 token stored in the admin cookie.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager uses a random per-process secret when secret is empty,
// so sessions do not survive a restart.
func NewSessionManager(secret string, ttl time.Duration) (*SessionManager, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}
	return &SessionManager{secret: key, ttl: ttl, now: time.Now}, nil
}

func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue returns a signed token and its expiry.
func (m *SessionManager) Issue() (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   sessionSubject,
		Issuer:    sessionIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, exp, nil
}

func (m *SessionManager) Verify(token string) error {
	if token == "" {
		return ErrInvalidSession
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithSubject(sessionSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return nil
}
