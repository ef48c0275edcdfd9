package agents

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/sevigo/goframe/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftproof/paper-warden/internal/core"
	"github.com/draftproof/paper-warden/internal/llm"
)

type stubModel struct {
	resp       string
	err        error
	lastPrompt string
}

func (s *stubModel) Call(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	return s.resp, s.err
}

type stubSearcher struct {
	docs []schema.Document
	err  error
}

func (s *stubSearcher) Search(_ context.Context, _, _ string) ([]schema.Document, error) {
	return s.docs, s.err
}

func newPrompts(t *testing.T) *llm.PromptManager {
	t.Helper()
	pm, err := llm.NewPromptManager()
	require.NoError(t, err)
	return pm
}

var methodSection = core.Section{
	Title:     "3. Methodology",
	Level:     1,
	Content:   "We evaluate on a single dataset.",
	StartLine: 10,
	EndLine:   20,
}

func TestClarityAgentAnalyze(t *testing.T) {
	logger := slog.Default()

	t.Run("parses findings from model output", func(t *testing.T) {
		model := &stubModel{resp: `{"issues": [
			{"line_hint": "first paragraph", "issue": "The term SOTA is never defined", "suggestion": "Define SOTA on first use", "severity": "warning"},
			{"issue": "Sentence too long", "suggestion": "Split it", "severity": "info"}
		]}`}
		agent := NewClarityAgent(model, newPrompts(t), nil, time.Second, "", logger)

		got, err := agent.Analyze(context.Background(), methodSection)
		require.NoError(t, err)
		require.Len(t, got, 2)

		first := got[0]
		assert.Equal(t, core.SuggestionClarity, first.Type)
		assert.Equal(t, core.SeverityWarning, first.Severity)
		assert.Equal(t, "The term SOTA is never defined", first.Title)
		assert.Contains(t, first.Description, "near: first paragraph")
		assert.Equal(t, "3. Methodology", first.Section)
		assert.Equal(t, 10, first.LineStart)
		assert.Equal(t, 20, first.LineEnd)
		assert.Equal(t, "Define SOTA on first use", first.SuggestedFix)
		assert.NotEmpty(t, first.ID)
		assert.NotEqual(t, first.ID, got[1].ID)
	})

	t.Run("fenced output is accepted", func(t *testing.T) {
		model := &stubModel{resp: "```json\n{\"issues\": [{\"issue\": \"Vague claim\", \"severity\": \"error\"}]}\n```"}
		agent := NewClarityAgent(model, newPrompts(t), nil, time.Second, "", logger)

		got, err := agent.Analyze(context.Background(), methodSection)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, core.SeverityError, got[0].Severity)
	})

	t.Run("malformed output yields no findings and no error", func(t *testing.T) {
		model := &stubModel{resp: "I found nothing to report."}
		agent := NewClarityAgent(model, newPrompts(t), nil, time.Second, "", logger)

		got, err := agent.Analyze(context.Background(), methodSection)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("transport failure is an AgentCallError", func(t *testing.T) {
		model := &stubModel{err: errors.New("connection refused")}
		agent := NewClarityAgent(model, newPrompts(t), nil, time.Second, "", logger)

		_, err := agent.Analyze(context.Background(), methodSection)
		var callErr *core.AgentCallError
		require.ErrorAs(t, err, &callErr)
		assert.Equal(t, "clarity", callErr.Agent)
		assert.Equal(t, "3. Methodology", callErr.Section)
	})

	t.Run("guidelines flow into the prompt", func(t *testing.T) {
		model := &stubModel{resp: `{"issues": []}`}
		searcher := &stubSearcher{docs: []schema.Document{
			schema.NewDocument("Define every acronym on first use.", nil),
		}}
		agent := NewClarityAgent(model, newPrompts(t), searcher, time.Second, "", logger)

		_, err := agent.Analyze(context.Background(), methodSection)
		require.NoError(t, err)
		assert.Contains(t, model.lastPrompt, "Define every acronym on first use.")
	})

	t.Run("retrieval failure degrades to no guidelines", func(t *testing.T) {
		model := &stubModel{resp: `{"issues": []}`}
		searcher := &stubSearcher{err: errors.New("qdrant down")}
		agent := NewClarityAgent(model, newPrompts(t), searcher, time.Second, "", logger)

		got, err := agent.Analyze(context.Background(), methodSection)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("venue instructions flow into the prompt", func(t *testing.T) {
		model := &stubModel{resp: `{"issues": []}`}
		agent := NewClarityAgent(model, newPrompts(t), nil, time.Second, "Use active voice only.", logger)

		_, err := agent.Analyze(context.Background(), methodSection)
		require.NoError(t, err)
		assert.Contains(t, model.lastPrompt, "Use active voice only.")
	})
}

func TestClarityAgentAppliesTo(t *testing.T) {
	agent := NewClarityAgent(&stubModel{}, newPrompts(t), nil, time.Second, "", slog.Default())
	assert.True(t, agent.AppliesTo(core.Section{Title: "Acknowledgements"}))
	assert.True(t, agent.AppliesTo(core.Section{}))
}

func TestRigorAgentAppliesTo(t *testing.T) {
	keywords := []string{"method", "experiment", "evaluation"}
	agent := NewRigorAgent(&stubModel{}, newPrompts(t), nil, time.Second, keywords, "", slog.Default())

	tests := []struct {
		name    string
		section core.Section
		want    bool
	}{
		{"title match", core.Section{Title: "3. Methodology"}, true},
		{"case-insensitive title match", core.Section{Title: "EXPERIMENTS"}, true},
		{"content match", core.Section{Title: "Appendix", Content: "Details of the evaluation protocol."}, true},
		{"no match", core.Section{Title: "Related Work", Content: "Prior art."}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, agent.AppliesTo(tt.section))
		})
	}

	// Determinism: the gate must answer the same both times.
	s := core.Section{Title: "Results"}
	assert.Equal(t, agent.AppliesTo(s), agent.AppliesTo(s))
}

func TestRigorAgentAnalyzeType(t *testing.T) {
	model := &stubModel{resp: `{"issues": [{"issue": "Single dataset only", "suggestion": "Add a second benchmark", "severity": "error"}]}`}
	agent := NewRigorAgent(model, newPrompts(t), nil, time.Second, []string{"method"}, "", slog.Default())

	got, err := agent.Analyze(context.Background(), methodSection)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, core.SuggestionRigor, got[0].Type)
}

func TestTitleFromIssue(t *testing.T) {
	short := "Missing baseline"
	assert.Equal(t, short, titleFromIssue(short))

	long := "The evaluation section compares against a single weak baseline from 2017 and never reports variance across random seeds"
	title := titleFromIssue(long)
	assert.Less(t, len(title), len(long))
	assert.Contains(t, title, "…")
}
