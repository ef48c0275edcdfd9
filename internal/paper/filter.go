package paper

import (
	"strings"

	"github.com/draftproof/paper-warden/internal/core"
)

// MatchesKeywords reports whether the section's title or content contains
// any of the keywords, case-insensitively. It is pure and deterministic.
// An empty keyword set or the wildcard "*" accepts every section.
//
// This is a precision/cost trade-off used to skip model calls for sections
// an agent is unlikely to find anything in; false negatives are accepted.
func MatchesKeywords(section core.Section, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}

	title := strings.ToLower(section.Title)
	content := strings.ToLower(section.Content)

	for _, keyword := range keywords {
		k := strings.ToLower(strings.TrimSpace(keyword))
		if k == "" {
			continue
		}
		if k == "*" {
			return true
		}
		if strings.Contains(title, k) || strings.Contains(content, k) {
			return true
		}
	}
	return false
}
