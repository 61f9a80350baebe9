package workflow

import (
	"strings"
	"time"

	"herald/internal/fault"
	"herald/internal/models"
)

const excerptLimit = 150

// Excerpt derives the listing teaser from content: the first 150 characters,
// with an ellipsis when truncated. Regenerated on every content update.
func Excerpt(content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) <= excerptLimit {
		return string(runes)
	}
	return strings.TrimRight(string(runes[:excerptLimit]), " ") + "..."
}

// Transition applies the two-state status machine to an article and owns the
// published_at side effect: the first draft->published transition stamps the
// timestamp, later re-publishes keep it, and unpublishing never clears it.
func Transition(a *models.Article, target string, now time.Time) error {
	switch target {
	case models.StatusDraft, models.StatusPublished:
	default:
		return fault.Invalid(map[string]string{"status": "must be draft or published"})
	}

	a.Status = target
	if target == models.StatusPublished && a.PublishedAt == nil {
		t := now
		a.PublishedAt = &t
	}
	return nil
}

// ParseTags accepts either a comma-delimited string or an array of names and
// returns the trimmed, deduplicated tag names in first-seen order.
func ParseTags(raw []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, chunk := range raw {
		for _, name := range strings.Split(chunk, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
