package agents

import (
	"log/slog"
	"time"

	"github.com/draftproof/paper-warden/internal/core"
	"github.com/draftproof/paper-warden/internal/llm"
	"github.com/draftproof/paper-warden/internal/retrieval"
)

// ClarityAgent reviews every section for readability problems: ambiguous
// statements, undefined jargon, tangled sentences.
type ClarityAgent struct {
	baseAgent
}

// NewClarityAgent creates the clarity reviewer. The searcher may be nil
// when guideline retrieval is disabled; instructions carry optional
// venue-specific guidance.
func NewClarityAgent(model llm.Caller, prompts *llm.PromptManager, searcher GuidelineSearcher, timeout time.Duration, instructions string, logger *slog.Logger) *ClarityAgent {
	if model == nil {
		panic("agents: model cannot be nil")
	}
	if prompts == nil {
		panic("agents: prompt manager cannot be nil")
	}
	if logger == nil {
		panic("agents: logger cannot be nil")
	}

	return &ClarityAgent{
		baseAgent: baseAgent{
			name:         "clarity",
			suggType:     core.SuggestionClarity,
			promptKey:    llm.ClarityAnalysisPrompt,
			collection:   retrieval.ClarityCollection,
			model:        model,
			prompts:      prompts,
			searcher:     searcher,
			timeout:      timeout,
			instructions: instructions,
			logger:       logger,
		},
	}
}

// AppliesTo always reports true: readability matters in every section.
func (a *ClarityAgent) AppliesTo(core.Section) bool {
	return true
}
