package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"herald/internal/auth"
	"herald/internal/models"
)

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokenManager("test-signing-key", "herald", time.Hour)
	srv := &Server{tokens: tokens}
	userID := uuid.New()

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := identity(r)
		if id.IsAnonymous() {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(id.UserID.String()))
	})

	t.Run("no header passes through anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		srv.authenticate(echo).ServeHTTP(rec, r)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
	})

	t.Run("valid bearer token resolves identity", func(t *testing.T) {
		token, err := tokens.Issue(userID, models.RoleAdmin)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		srv.authenticate(echo).ServeHTTP(rec, r)
		if rec.Body.String() != userID.String() {
			t.Fatalf("body = %q, want user id", rec.Body.String())
		}
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic abc")
		srv.authenticate(echo).ServeHTTP(rec, r)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("invalid token rejected rather than downgraded", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer not-a-token")
		srv.authenticate(echo).ServeHTTP(rec, r)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}

func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("anonymous blocked", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		requireAuth(next).ServeHTTP(rec, r)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("identity admitted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		id := auth.Identity{UserID: uuid.New(), Role: models.RoleUser}
		r = r.WithContext(auth.WithIdentity(r.Context(), id))
		requireAuth(next).ServeHTTP(rec, r)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})
}
