package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	tok, err := m.Mint("alice@example.com")
	if err != nil {
		t.Fatal(err)
	}
	email, err := m.Verify(tok)
	if err != nil {
		t.Fatal(err)
	}
	if email != "alice@example.com" {
		t.Fatalf("email = %q", email)
	}
}

func TestTokenRejection(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("err = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("other-secret", time.Hour)
		tok, _ := other.Mint("alice@example.com")
		if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("err = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		short := NewTokenManager("test-secret", -time.Minute)
		tok, _ := short.Mint("alice@example.com")
		if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("err = %v, want ErrInvalidToken", err)
		}
	})
}

func TestIdentify(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	if got := m.Identify(""); got != "" {
		t.Fatalf("empty token identity = %q", got)
	}
	if got := m.Identify("junk"); got != "" {
		t.Fatalf("invalid token identity = %q", got)
	}
	tok, _ := m.Mint("alice@example.com")
	if got := m.Identify(tok); got != "alice@example.com" {
		t.Fatalf("identity = %q", got)
	}
}
