package paper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftproof/paper-warden/internal/core"
)

func TestTruncateWithinBudgetIsNoOp(t *testing.T) {
	s := core.Section{Title: "Short", Content: "One sentence. Another one."}
	got := Truncate(s, 100)
	assert.Equal(t, s, got)
	assert.False(t, got.Truncated)
}

func TestTruncateCutsAtSentenceBoundary(t *testing.T) {
	var b strings.Builder
	for range 200 {
		b.WriteString("This is a full sentence. ")
	}
	s := core.Section{Title: "Long", Content: b.String()}

	got := Truncate(s, 100)
	require.True(t, got.Truncated)
	assert.LessOrEqual(t, EstimateTokens(got), 100)

	body := strings.TrimSuffix(got.Content, TruncationMarker)
	assert.True(t, strings.HasSuffix(strings.TrimRight(body, " \n"), "."),
		"truncated content should end on a sentence boundary, got %q", body[len(body)-20:])
}

func TestTruncateIdempotent(t *testing.T) {
	var b strings.Builder
	for range 500 {
		b.WriteString("Sentences pile up here. ")
	}
	s := core.Section{Title: "Long", Content: b.String()}

	once := Truncate(s, 50)
	twice := Truncate(once, 50)
	assert.Equal(t, once, twice)
}

func TestTruncateNoSentenceBoundary(t *testing.T) {
	s := core.Section{Title: "Blob", Content: strings.Repeat("x", 4000)}
	got := Truncate(s, 100)
	require.True(t, got.Truncated)
	assert.LessOrEqual(t, EstimateTokens(got), 100)
	assert.True(t, strings.HasSuffix(got.Content, TruncationMarker))
}

func TestTruncateTinyBudget(t *testing.T) {
	s := core.Section{Title: "Blob", Content: strings.Repeat("word. ", 200)}

	// Budgets too small to even hold the marker still must be honored:
	// the content is hard-cut and the marker omitted.
	for _, maxTokens := range []int{1, 2, 5, 9} {
		got := Truncate(s, maxTokens)
		require.True(t, got.Truncated, "maxTokens=%d", maxTokens)
		assert.LessOrEqual(t, EstimateTokens(got), maxTokens, "maxTokens=%d", maxTokens)
		assert.False(t, strings.HasSuffix(got.Content, TruncationMarker), "maxTokens=%d", maxTokens)

		twice := Truncate(got, maxTokens)
		assert.Equal(t, got, twice, "maxTokens=%d", maxTokens)
	}
}

func TestEstimateTokens(t *testing.T) {
	s := core.Section{Content: strings.Repeat("a", 400)}
	assert.Equal(t, 100, EstimateTokens(s))
}
