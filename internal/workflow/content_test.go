package workflow

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"herald/internal/fault"
	"herald/internal/models"
)

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("a", 200)

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "short content unchanged",
			content: "A short piece.",
			want:    "A short piece.",
		},
		{
			name:    "exactly at the limit",
			content: strings.Repeat("b", 150),
			want:    strings.Repeat("b", 150),
		},
		{
			name:    "long content truncated with ellipsis",
			content: long,
			want:    strings.Repeat("a", 150) + "...",
		},
		{
			name:    "surrounding whitespace trimmed",
			content: "  hello  ",
			want:    "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excerpt(tt.content); got != tt.want {
				t.Fatalf("Excerpt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExcerptMultibyte(t *testing.T) {
	content := strings.Repeat("ü", 160)
	got := Excerpt(content)
	want := strings.Repeat("ü", 150) + "..."
	if got != want {
		t.Fatalf("Excerpt() truncated mid-rune: got %d runes", len([]rune(got)))
	}
}

func TestTransition(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-48 * time.Hour)

	t.Run("rejects unknown status", func(t *testing.T) {
		var a models.Article
		err := Transition(&a, "archived", now)
		if !fault.Is(err, fault.Validation) {
			t.Fatalf("Transition() error = %v, want validation fault", err)
		}
	})

	t.Run("first publish stamps published_at", func(t *testing.T) {
		a := models.Article{Status: models.StatusDraft}
		if err := Transition(&a, models.StatusPublished, now); err != nil {
			t.Fatalf("Transition() error = %v", err)
		}
		if a.PublishedAt == nil || !a.PublishedAt.Equal(now) {
			t.Fatalf("PublishedAt = %v, want %v", a.PublishedAt, now)
		}
	})

	t.Run("re-publish keeps original timestamp", func(t *testing.T) {
		a := models.Article{Status: models.StatusPublished, PublishedAt: &earlier}
		if err := Transition(&a, models.StatusDraft, now); err != nil {
			t.Fatalf("Transition() error = %v", err)
		}
		if err := Transition(&a, models.StatusPublished, now); err != nil {
			t.Fatalf("Transition() error = %v", err)
		}
		if a.PublishedAt == nil || !a.PublishedAt.Equal(earlier) {
			t.Fatalf("PublishedAt = %v, want original %v", a.PublishedAt, earlier)
		}
	})

	t.Run("unpublish keeps published_at", func(t *testing.T) {
		a := models.Article{Status: models.StatusPublished, PublishedAt: &earlier}
		if err := Transition(&a, models.StatusDraft, now); err != nil {
			t.Fatalf("Transition() error = %v", err)
		}
		if a.Status != models.StatusDraft {
			t.Fatalf("Status = %q, want draft", a.Status)
		}
		if a.PublishedAt == nil {
			t.Fatal("PublishedAt cleared on unpublish")
		}
	})
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "nil input",
			input: nil,
			want:  nil,
		},
		{
			name:  "comma string split and trimmed",
			input: []string{"news, sports , campus"},
			want:  []string{"news", "sports", "campus"},
		},
		{
			name:  "array form",
			input: []string{"news", "sports"},
			want:  []string{"news", "sports"},
		},
		{
			name:  "case-insensitive dedupe keeps first spelling",
			input: []string{"News, news, NEWS, sports"},
			want:  []string{"News", "sports"},
		},
		{
			name:  "empty chunks dropped",
			input: []string{",, news ,,"},
			want:  []string{"news"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTags(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseTags(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
