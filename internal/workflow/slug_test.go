package workflow

import (
	"errors"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple title",
			input: "Campus Votes Today",
			want:  "campus-votes-today",
		},
		{
			name:  "punctuation collapsed",
			input: "Breaking: Library -- Reopens!",
			want:  "breaking-library-reopens",
		},
		{
			name:  "leading and trailing separators trimmed",
			input: "  ...Hello World...  ",
			want:  "hello-world",
		},
		{
			name:  "digits kept",
			input: "Top 10 Clubs of 2026",
			want:  "top-10-clubs-of-2026",
		},
		{
			name:  "only punctuation",
			input: "!!!",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNextSlug(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		taken []string
		want  string
	}{
		{
			name: "base free",
			base: "hello-world",
			want: "hello-world",
		},
		{
			name:  "first suffix",
			base:  "hello-world",
			taken: []string{"hello-world"},
			want:  "hello-world-1",
		},
		{
			name:  "skips taken suffixes",
			base:  "hello-world",
			taken: []string{"hello-world", "hello-world-1", "hello-world-2"},
			want:  "hello-world-3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taken := map[string]bool{}
			for _, s := range tt.taken {
				taken[s] = true
			}
			got, err := NextSlug(tt.base, func(candidate string) (bool, error) { return taken[candidate], nil })
			if err != nil {
				t.Fatalf("NextSlug(%q) returned error: %v", tt.base, err)
			}
			if got != tt.want {
				t.Fatalf("NextSlug(%q) = %q, want %q", tt.base, got, tt.want)
			}
		})
	}

	t.Run("lookup failure aborts", func(t *testing.T) {
		lookupErr := errors.New("count failed")
		calls := 0
		_, err := NextSlug("hello-world", func(string) (bool, error) {
			calls++
			if calls == 2 {
				return false, lookupErr
			}
			return true, nil
		})
		if !errors.Is(err, lookupErr) {
			t.Fatalf("NextSlug error = %v, want %v", err, lookupErr)
		}
	})
}
