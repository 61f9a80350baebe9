package query

import (
	"testing"

	"herald/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Filters
		want Filters
	}{
		{
			name: "defaults applied",
			in:   Filters{},
			want: Filters{Status: models.StatusPublished, Page: 1, PerPage: 10},
		},
		{
			name: "per_page capped",
			in:   Filters{PerPage: 5000},
			want: Filters{Status: models.StatusPublished, Page: 1, PerPage: 100},
		},
		{
			name: "negative page clamped",
			in:   Filters{Page: -3, PerPage: 25},
			want: Filters{Status: models.StatusPublished, Page: 1, PerPage: 25},
		},
		{
			name: "short search dropped",
			in:   Filters{Search: "a"},
			want: Filters{Status: models.StatusPublished, Page: 1, PerPage: 10},
		},
		{
			name: "search trimmed and kept",
			in:   Filters{Search: "  election  "},
			want: Filters{Status: models.StatusPublished, Page: 1, PerPage: 10, Search: "election"},
		},
		{
			name: "draft status preserved",
			in:   Filters{Status: models.StatusDraft},
			want: Filters{Status: models.StatusDraft, Page: 1, PerPage: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalize(tt.in); got != tt.want {
				t.Fatalf("normalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain text untouched", input: "election", want: "election"},
		{name: "percent escaped", input: "100% true", want: `100\% true`},
		{name: "underscore escaped", input: "snake_case", want: `snake\_case`},
		{name: "backslash escaped first", input: `a\b`, want: `a\\b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeLike(tt.input); got != tt.want {
				t.Fatalf("escapeLike(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
