package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"herald/internal/fault"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		kind fault.Kind
		want int
	}{
		{name: "validation", kind: fault.Validation, want: http.StatusUnprocessableEntity},
		{name: "unauthenticated", kind: fault.Unauthenticated, want: http.StatusUnauthorized},
		{name: "forbidden", kind: fault.Forbidden, want: http.StatusForbidden},
		{name: "not found", kind: fault.NotFound, want: http.StatusNotFound},
		{name: "conflict", kind: fault.Conflict, want: http.StatusConflict},
		{name: "dependency", kind: fault.Dependency, want: http.StatusBadGateway},
		{name: "internal", kind: fault.Internal, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.kind); got != tt.want {
				t.Fatalf("statusFor(%v) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	t.Run("fields surfaced for validation", func(t *testing.T) {
		rec := httptest.NewRecorder()
		respondError(rec, fault.Invalid(map[string]string{"title": "is required"}))

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d", rec.Code)
		}
		var body struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Fields["title"] != "is required" {
			t.Fatalf("fields = %v", body.Fields)
		}
	})

	t.Run("internal detail hidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		respondError(rec, fault.Wrap(fault.Internal, "query failed", errSentinel))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "pg: connection refused") {
			t.Fatal("internal cause leaked to the client")
		}
	})
}

var errSentinel = fault.New(fault.Internal, "pg: connection refused")

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"hello"}`))
		var p payload
		if err := decodeJSON(r, &p); err != nil {
			t.Fatalf("decodeJSON() = %v", err)
		}
		if p.Title != "hello" {
			t.Fatalf("Title = %q", p.Title)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"x","bogus":1}`))
		var p payload
		if err := decodeJSON(r, &p); !fault.Is(err, fault.Validation) {
			t.Fatalf("decodeJSON() = %v, want validation fault", err)
		}
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
		var p payload
		if err := decodeJSON(r, &p); !fault.Is(err, fault.Validation) {
			t.Fatalf("decodeJSON() = %v, want validation fault", err)
		}
	})
}
