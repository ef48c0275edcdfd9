package review

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftproof/paper-warden/internal/core"
	"github.com/draftproof/paper-warden/internal/llm"
)

type fakeAgent struct {
	name    string
	applies func(core.Section) bool
	analyze func(core.Section) ([]core.Suggestion, error)

	mu   sync.Mutex
	seen []string
}

func (f *fakeAgent) Name() string { return f.name }

func (f *fakeAgent) AppliesTo(section core.Section) bool {
	if f.applies == nil {
		return true
	}
	return f.applies(section)
}

func (f *fakeAgent) Analyze(_ context.Context, section core.Section) ([]core.Suggestion, error) {
	f.mu.Lock()
	f.seen = append(f.seen, section.Title)
	f.mu.Unlock()
	if f.analyze == nil {
		return nil, nil
	}
	return f.analyze(section)
}

type stubModel struct {
	resp string
	err  error
}

func (s *stubModel) Call(_ context.Context, _ string) (string, error) {
	return s.resp, s.err
}

func suggestionFor(id string, typ core.SuggestionType, section string) core.Suggestion {
	return core.Suggestion{
		ID:      id,
		Type:    typ,
		Title:   "finding " + id,
		Section: section,
	}
}

func newTestOrchestrator(t *testing.T, model llm.Caller, minFindings int) *Orchestrator {
	t.Helper()
	pm, err := llm.NewPromptManager()
	require.NoError(t, err)
	return NewOrchestrator(model, pm, time.Second, minFindings, slog.Default())
}

// passthroughOrchestrator returns an orchestrator whose minimum is never
// reached, so every review falls through to the raw union.
func passthroughOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	return newTestOrchestrator(t, &stubModel{resp: "{}"}, 1000)
}

func staticAgents(agents ...core.Agent) AgentFactory {
	return func(core.ReviewRequest) []core.Agent { return agents }
}

const twoSectionDraft = "# Abstract\nWe made a model. It works good.\n## Method\nWe used data.\n"

func TestWorkflowSectionTraversal(t *testing.T) {
	clarity := &fakeAgent{name: "clarity"}
	w := NewWorkflow(staticAgents(clarity), passthroughOrchestrator(t), 2000, slog.Default())

	draft := "# One\ntext\n# Two\ntext\n# Three\ntext\n"
	result, err := w.Review(context.Background(), core.ReviewRequest{Content: draft, SessionID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, 3, result.SectionCount)
	assert.Equal(t, []string{"One", "Two", "Three"}, clarity.seen)
	assert.GreaterOrEqual(t, result.ProcessingTime, 0.0)
	assert.Equal(t, "s1", result.SessionID)
}

func TestWorkflowAllAgentsFail(t *testing.T) {
	failing := &fakeAgent{
		name: "clarity",
		analyze: func(s core.Section) ([]core.Suggestion, error) {
			return nil, &core.AgentCallError{Agent: "clarity", Section: s.Title, Err: errors.New("timeout")}
		},
	}
	w := NewWorkflow(staticAgents(failing), passthroughOrchestrator(t), 2000, slog.Default())

	result, err := w.Review(context.Background(), core.ReviewRequest{Content: twoSectionDraft, SessionID: "s2"})
	require.NoError(t, err)
	assert.Empty(t, result.Suggestions)
	assert.False(t, result.Validated)
}

func TestWorkflowFallbackUnionOrder(t *testing.T) {
	clarity := &fakeAgent{
		name: "clarity",
		analyze: func(s core.Section) ([]core.Suggestion, error) {
			return []core.Suggestion{suggestionFor("c-"+s.Title, core.SuggestionClarity, s.Title)}, nil
		},
	}
	rigor := &fakeAgent{
		name: "rigor",
		analyze: func(s core.Section) ([]core.Suggestion, error) {
			return []core.Suggestion{suggestionFor("r-"+s.Title, core.SuggestionRigor, s.Title)}, nil
		},
	}
	// The orchestrator model returns garbage, forcing the fallback law.
	orch := newTestOrchestrator(t, &stubModel{resp: "not json at all"}, 1)
	w := NewWorkflow(staticAgents(clarity, rigor), orch, 2000, slog.Default())

	result, err := w.Review(context.Background(), core.ReviewRequest{Content: twoSectionDraft, SessionID: "s3"})
	require.NoError(t, err)
	assert.False(t, result.Validated)

	ids := make([]string, len(result.Suggestions))
	for i, s := range result.Suggestions {
		ids[i] = s.ID
	}
	// Accumulation order: all clarity findings first, then rigor, each in
	// section order.
	assert.Equal(t, []string{"c-Abstract", "c-Method", "r-Abstract", "r-Method"}, ids)
}

func TestWorkflowEmptyDocument(t *testing.T) {
	clarity := &fakeAgent{name: "clarity"}
	w := NewWorkflow(staticAgents(clarity), passthroughOrchestrator(t), 2000, slog.Default())

	result, err := w.Review(context.Background(), core.ReviewRequest{Content: "", SessionID: "s4"})
	require.NoError(t, err)
	assert.Zero(t, result.SectionCount)
	assert.Empty(t, result.Suggestions)
	assert.Empty(t, clarity.seen)
}

func TestWorkflowKeywordGate(t *testing.T) {
	clarity := &fakeAgent{
		name: "clarity",
		analyze: func(s core.Section) ([]core.Suggestion, error) {
			return []core.Suggestion{suggestionFor("c-"+s.Title, core.SuggestionClarity, s.Title)}, nil
		},
	}
	rigor := &fakeAgent{
		name: "rigor",
		applies: func(s core.Section) bool {
			lower := strings.ToLower(s.Title + " " + s.Content)
			return strings.Contains(lower, "method") || strings.Contains(lower, "data")
		},
		analyze: func(s core.Section) ([]core.Suggestion, error) {
			return []core.Suggestion{suggestionFor("r-"+s.Title, core.SuggestionRigor, s.Title)}, nil
		},
	}
	w := NewWorkflow(staticAgents(clarity, rigor), passthroughOrchestrator(t), 2000, slog.Default())

	result, err := w.Review(context.Background(), core.ReviewRequest{Content: twoSectionDraft, SessionID: "s5"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Abstract", "Method"}, clarity.seen)
	assert.Equal(t, []string{"Method"}, rigor.seen)

	var ids []string
	for _, s := range result.Suggestions {
		ids = append(ids, s.ID)
	}
	assert.Contains(t, ids, "c-Abstract")
	assert.Contains(t, ids, "c-Method")
	assert.Contains(t, ids, "r-Method")
	assert.NotContains(t, ids, "r-Abstract")
}

func TestWorkflowCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	blocking := &fakeAgent{
		name: "clarity",
		analyze: func(core.Section) ([]core.Suggestion, error) {
			cancel()
			return nil, context.Canceled
		},
	}
	w := NewWorkflow(staticAgents(blocking), passthroughOrchestrator(t), 2000, slog.Default())

	_, err := w.Review(ctx, core.ReviewRequest{Content: twoSectionDraft, SessionID: "s6"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkflowParseErrorAborts(t *testing.T) {
	w := NewWorkflow(staticAgents(&fakeAgent{name: "clarity"}), passthroughOrchestrator(t), 2000, slog.Default())

	_, err := w.Review(context.Background(), core.ReviewRequest{Content: "bad \xff\xfe bytes", SessionID: "s7"})
	var parseErr *core.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestWorkflowProgressEvents(t *testing.T) {
	clarity := &fakeAgent{name: "clarity"}
	w := NewWorkflow(staticAgents(clarity), passthroughOrchestrator(t), 2000, slog.Default())

	var mu sync.Mutex
	var stages []core.ProgressStage
	progress := func(ev core.ProgressEvent) {
		mu.Lock()
		stages = append(stages, ev.Stage)
		mu.Unlock()
	}

	_, err := w.ReviewWithProgress(context.Background(), core.ReviewRequest{Content: twoSectionDraft, SessionID: "s8"}, progress)
	require.NoError(t, err)

	assert.Equal(t, []core.ProgressStage{
		core.StageParsed,
		core.StageSection,
		core.StageSection,
		core.StageValidating,
		core.StageComplete,
	}, stages)
}

func TestWorkflowValidatedPath(t *testing.T) {
	clarity := &fakeAgent{
		name: "clarity",
		analyze: func(s core.Section) ([]core.Suggestion, error) {
			return []core.Suggestion{
				suggestionFor("c1-"+s.Title, core.SuggestionClarity, s.Title),
				suggestionFor("c2-"+s.Title, core.SuggestionClarity, s.Title),
			}, nil
		},
	}
	decision := `{"final_suggestions": ["c1-Method", "c1-Abstract"], "reasoning": "dedup", "priority_order": ["c1-Method", "c1-Abstract"]}`
	orch := newTestOrchestrator(t, &stubModel{resp: decision}, 1)
	w := NewWorkflow(staticAgents(clarity), orch, 2000, slog.Default())

	result, err := w.Review(context.Background(), core.ReviewRequest{Content: twoSectionDraft, SessionID: "s9"})
	require.NoError(t, err)
	assert.True(t, result.Validated)
	require.Len(t, result.Suggestions, 2)
	assert.Equal(t, "c1-Method", result.Suggestions[0].ID)
	assert.Equal(t, "c1-Abstract", result.Suggestions[1].ID)
}

func TestStateTransitions(t *testing.T) {
	t.Run("zero sections jumps to validation", func(t *testing.T) {
		s := &ReviewState{}
		assert.Equal(t, StateValidating, nextState(StateParsing, s))
	})

	t.Run("cursor below bound loops back to analyzing", func(t *testing.T) {
		s := &ReviewState{Sections: make([]core.Section, 2), Cursor: 1}
		assert.Equal(t, StateAnalyzing, nextState(StateAdvancing, s))
	})

	t.Run("cursor at bound moves to validation", func(t *testing.T) {
		s := &ReviewState{Sections: make([]core.Section, 2), Cursor: 2}
		assert.Equal(t, StateValidating, nextState(StateAdvancing, s))
	})

	t.Run("validation is followed by done", func(t *testing.T) {
		assert.Equal(t, StateDone, nextState(StateValidating, &ReviewState{}))
	})

	t.Run("done is terminal", func(t *testing.T) {
		assert.Panics(t, func() { nextState(StateDone, &ReviewState{}) })
	})
}
