package domain

import (
	"errors"
	"time"
)

const (
	MaxDisplayNameLen = 36
	MaxAvatarBytes    = 2_000_000
)

var (
	ErrNameTooLong = errors.New("display name too long")
)

// DisplayName sanitizes a member's display name for a room.
func DisplayName(raw string) string {
	if raw == "" {
		return "Anonymous"
	}
	if len(raw) > MaxDisplayNameLen {
		return raw[:MaxDisplayNameLen]
	}
	return raw
}

// User is a registered account. Email doubles as the account identity
// carried by bearer tokens.
type User struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Nickname     string    `json:"nickname"`
	Bio          string    `json:"bio"`
	Avatar       string    `json:"avatar,omitempty"`
	Verified     bool      `json:"verified"`
	VerifyToken  string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}
