package workflow

import (
	"strconv"
	"strings"
	"unicode"
)

// Slugify lower-cases and hyphenates a title into its base slug. Runs of
// non-alphanumeric characters collapse into a single hyphen.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// NextSlug returns the first free slug for base: the base itself, then
// base-1, base-2, ... exists is consulted per candidate and its error aborts
// the walk; the unique index on articles.slug remains the backstop for
// concurrent creates.
func NextSlug(base string, exists func(string) (bool, error)) (string, error) {
	slug := base
	for counter := 1; ; counter++ {
		taken, err := exists(slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(counter)
	}
}
