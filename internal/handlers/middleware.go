package handlers

import (
	"net/http"
	"strings"

	"herald/internal/auth"
	"herald/internal/fault"
)

// authenticate resolves a bearer token into an Identity on the context.
// Requests without a token pass through anonymous; a bad token is rejected
// so clients learn their session is dead instead of silently downgrading.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			respondError(w, fault.New(fault.Unauthenticated, "malformed authorization header"))
			return
		}
		id, err := s.tokens.Verify(token)
		if err != nil {
			respondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

// requireAuth gates a subtree on a resolved identity.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if !ok || id.IsAnonymous() {
			respondError(w, fault.New(fault.Unauthenticated, "authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// identity returns the caller identity, anonymous when unauthenticated.
func identity(r *http.Request) auth.Identity {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		return auth.Anonymous
	}
	return id
}
