package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"herald/internal/fault"
	"herald/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-signing-key", "herald", time.Hour)
	userID := uuid.New()

	token, err := m.Issue(userID, models.RoleModerator)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	id, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id.UserID != userID {
		t.Fatalf("UserID = %v, want %v", id.UserID, userID)
	}
	if id.Role != models.RoleModerator {
		t.Fatalf("Role = %q, want moderator", id.Role)
	}
}

func TestTokenRejections(t *testing.T) {
	m := NewTokenManager("test-signing-key", "herald", time.Hour)
	userID := uuid.New()

	t.Run("garbage token", func(t *testing.T) {
		if _, err := m.Verify("not.a.token"); !fault.Is(err, fault.Unauthenticated) {
			t.Fatalf("Verify() = %v, want unauthenticated", err)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		other := NewTokenManager("different-key", "herald", time.Hour)
		token, err := other.Issue(userID, models.RoleUser)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		if _, err := m.Verify(token); !fault.Is(err, fault.Unauthenticated) {
			t.Fatalf("Verify() = %v, want unauthenticated", err)
		}
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewTokenManager("test-signing-key", "someone-else", time.Hour)
		token, err := other.Issue(userID, models.RoleUser)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		if _, err := m.Verify(token); !fault.Is(err, fault.Unauthenticated) {
			t.Fatalf("Verify() = %v, want unauthenticated", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenManager("test-signing-key", "herald", -time.Minute)
		token, err := expired.Issue(userID, models.RoleUser)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		if _, err := m.Verify(token); !fault.Is(err, fault.Unauthenticated) {
			t.Fatalf("Verify() = %v, want unauthenticated", err)
		}
	})
}
