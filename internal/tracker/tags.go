package tracker

import (
	"regexp"
	"strings"
)

// tagPattern matches hashtags of the form #word, where word is letters,
// digits, or underscores.
var tagPattern = regexp.MustCompile(`#(\w+)`)

// namePattern validates bare tag names for explicit registration.
var namePattern = regexp.MustCompile(`^\w+$`)

// ExtractTags returns the hashtag names mentioned in text, without the '#',
// de-duplicated case-insensitively in first-seen order.
func ExtractTags(text string) []string {
	matches := tagPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		key := strings.ToLower(m[1])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, m[1])
	}
	return tags
}

// ValidTagName reports whether name is acceptable as a tag: non-empty
// letters, digits, and underscores only.
func ValidTagName(name string) bool {
	return namePattern.MatchString(name)
}
