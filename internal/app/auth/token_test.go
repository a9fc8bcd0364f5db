package auth

import (
	"testing"
	"time"
)

func TestSessionRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.IssueSession("user-1", "user")
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := svc.ParseSession(token)
	if err != nil {
		t.Fatalf("parse session: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1, got %q", claims.UserID)
	}
	if claims.Role != "user" {
		t.Fatalf("expected role user, got %q", claims.Role)
	}
}

func TestParseSessionRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a", time.Hour).IssueSession("user-1", "user")
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	if _, err := NewTokenService("secret-b", time.Hour).ParseSession(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseSessionRejectsExpired(t *testing.T) {
	svc := NewTokenService("test-secret", time.Nanosecond)

	token, err := svc.IssueSession("user-1", "user")
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if _, err := svc.ParseSession(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseBearer(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	token, err := svc.IssueSession("user-1", "")
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	claims, err := svc.ParseBearer("Bearer " + token)
	if err != nil {
		t.Fatalf("parse bearer: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1, got %q", claims.UserID)
	}

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic " + token, token} {
		if _, err := svc.ParseBearer(header); err != ErrInvalidToken {
			t.Fatalf("header %q: expected ErrInvalidToken, got %v", header, err)
		}
	}
}

func TestNewTokenServiceDefaultTTL(t *testing.T) {
	svc := NewTokenService("test-secret", 0)
	if svc.sessionTTL != 7*24*time.Hour {
		t.Fatalf("expected 7d default TTL, got %v", svc.sessionTTL)
	}
}
