// Package auth mints and verifies the bearer tokens that carry account
// identity. The rest of the system treats the token as opaque; only the
// email claim extracted here crosses into the room engine.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *TokenManager) Mint(email string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	return t.SignedString(m.secret)
}

// Verify returns the account email carried by a valid token.
func (m *TokenManager) Verify(token string) (string, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid || c.Email == "" {
		return "", ErrInvalidToken
	}
	return c.Email, nil
}

// Identify is Verify for optional tokens: invalid or absent tokens map
// to the empty (guest) identity instead of an error.
func (m *TokenManager) Identify(token string) string {
	if token == "" {
		return ""
	}
	email, err := m.Verify(token)
	if err != nil {
		return ""
	}
	return email
}
