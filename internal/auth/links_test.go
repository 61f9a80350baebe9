package auth

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestVerificationLink(t *testing.T) {
	m := NewTokenManager("link-secret", "herald", time.Hour)
	userID := uuid.New()
	email := "reader@example.edu"

	link := m.VerificationLink("https://news.example.edu", userID, email, time.Hour)
	if !strings.Contains(link, userID.String()) {
		t.Fatalf("link %q missing user id", link)
	}
	if !strings.Contains(link, "expires=") {
		t.Fatalf("link %q missing expiry", link)
	}
}

func TestCheckVerification(t *testing.T) {
	m := NewTokenManager("link-secret", "herald", time.Hour)
	userID := uuid.New()
	email := "reader@example.edu"

	expires := time.Now().Add(time.Hour).Unix()
	sig := m.VerifySignature(userID, email, expires)
	expiresRaw := fmt.Sprintf("%d", expires)

	t.Run("valid link", func(t *testing.T) {
		if !m.CheckVerification(userID, email, sig, expiresRaw) {
			t.Fatal("valid signature rejected")
		}
	})

	t.Run("wrong email", func(t *testing.T) {
		if m.CheckVerification(userID, "other@example.edu", sig, expiresRaw) {
			t.Fatal("signature accepted for another email")
		}
	})

	t.Run("wrong user", func(t *testing.T) {
		if m.CheckVerification(uuid.New(), email, sig, expiresRaw) {
			t.Fatal("signature accepted for another user")
		}
	})

	t.Run("tampered expiry", func(t *testing.T) {
		later := fmt.Sprintf("%d", expires+3600)
		if m.CheckVerification(userID, email, sig, later) {
			t.Fatal("signature accepted with extended expiry")
		}
	})

	t.Run("expired link", func(t *testing.T) {
		past := time.Now().Add(-time.Minute).Unix()
		pastSig := m.VerifySignature(userID, email, past)
		if m.CheckVerification(userID, email, pastSig, fmt.Sprintf("%d", past)) {
			t.Fatal("expired link accepted")
		}
	})

	t.Run("garbage expiry", func(t *testing.T) {
		if m.CheckVerification(userID, email, sig, "soon") {
			t.Fatal("non-numeric expiry accepted")
		}
	})
}
