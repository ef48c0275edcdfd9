package paper

import (
	"github.com/draftproof/paper-warden/internal/core"
)

// TruncationMarker is appended to content that was cut to fit the budget.
const TruncationMarker = "\n\n... [content truncated for length]"

// charsPerToken is the rough token estimate used across the pipeline:
// four characters per token.
const charsPerToken = 4

// EstimateTokens approximates the token count of a section's content.
func EstimateTokens(section core.Section) int {
	return len(section.Content) / charsPerToken
}

// Truncate returns a section whose content fits maxTokens, cut at the
// nearest preceding sentence boundary so it never ends mid-sentence, with
// TruncationMarker appended. Sections already within budget are returned
// unchanged, which makes the operation idempotent.
func Truncate(section core.Section, maxTokens int) core.Section {
	if maxTokens <= 0 || section.Truncated || EstimateTokens(section) <= maxTokens {
		return section
	}

	// Reserve room for the marker so the whole result, marker included,
	// stays within budget and a second Truncate call is a no-op.
	budgetChars := maxTokens * charsPerToken
	maxChars := budgetChars - len(TruncationMarker)
	if maxChars <= 0 {
		// Budget too small to fit the marker at all; hard-cut the content
		// and skip the marker rather than exceed the budget.
		truncated := section
		truncated.Content = section.Content[:budgetChars]
		truncated.Truncated = true
		return truncated
	}
	prefix := section.Content[:maxChars]

	if cut := lastSentenceEnd(prefix); cut > 0 {
		prefix = prefix[:cut]
	}

	truncated := section
	truncated.Content = prefix + TruncationMarker
	truncated.Truncated = true
	return truncated
}

// lastSentenceEnd returns the index just past the last sentence-ending
// punctuation in s, or 0 when s contains no sentence boundary (the caller
// then keeps the hard character cut).
func lastSentenceEnd(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case '.', '!', '?':
			// Treat as a boundary only when followed by whitespace or
			// end-of-prefix, so "3.1" or "e.g." mid-sentence do not count.
			if i == len(s)-1 || s[i+1] == ' ' || s[i+1] == '\n' || s[i+1] == '\t' {
				return i + 1
			}
		case '\n':
			if i > 0 && s[i-1] == '\n' {
				// Paragraph break is as good as a sentence end.
				return i + 1
			}
		}
	}
	return 0
}
