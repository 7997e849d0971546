package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/evhenko/tunesync/internal/domain"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

const userCols = "email, password_hash, nickname, bio, avatar, verified, verify_token, created_at"

// CreateUser inserts a new unverified account.
func (s *Store) CreateUser(u domain.User) error {
	_, err := s.db.Exec(`
		INSERT INTO users (`+userCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, u.Email, u.PasswordHash, u.Nickname, u.Bio, u.Avatar, u.Verified, u.VerifyToken, time.Now())
	if err != nil {
		// sqlite reports the primary-key clash as a constraint error
		if existing, lookupErr := s.UserByEmail(u.Email); lookupErr == nil && existing != nil {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UserByEmail returns (nil, nil) when no account exists.
func (s *Store) UserByEmail(email string) (*domain.User, error) {
	return s.scanUser(s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email))
}

// UserByVerifyToken resolves a pending verification token.
func (s *Store) UserByVerifyToken(token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	return s.scanUser(s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE verify_token = ?`, token))
}

// MarkVerified flips the verified flag and burns the token.
func (s *Store) MarkVerified(email string) error {
	res, err := s.db.Exec(`UPDATE users SET verified = 1, verify_token = NULL WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("failed to mark verified: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateProfile overwrites the mutable profile fields.
func (s *Store) UpdateProfile(u domain.User) error {
	res, err := s.db.Exec(`
		UPDATE users SET password_hash = ?, nickname = ?, bio = ?, avatar = ? WHERE email = ?
	`, u.PasswordHash, u.Nickname, u.Bio, u.Avatar, u.Email)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var token sql.NullString
	err := row.Scan(&u.Email, &u.PasswordHash, &u.Nickname, &u.Bio, &u.Avatar, &u.Verified, &token, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.VerifyToken = token.String
	return &u, nil
}
