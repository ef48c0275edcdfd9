package agents

import (
	"log/slog"
	"time"

	"github.com/draftproof/paper-warden/internal/core"
	"github.com/draftproof/paper-warden/internal/llm"
	"github.com/draftproof/paper-warden/internal/paper"
	"github.com/draftproof/paper-warden/internal/retrieval"
)

// RigorAgent reviews methodology-bearing sections for soundness problems:
// unsupported claims, missing baselines, statistical gaps. It skips
// sections that do not match its keyword gate, so narrative sections never
// cost a model call.
type RigorAgent struct {
	baseAgent
	keywords []string
}

// NewRigorAgent creates the rigor reviewer. The keyword gate decides which
// sections the agent analyzes; extra venue keywords widen it.
func NewRigorAgent(model llm.Caller, prompts *llm.PromptManager, searcher GuidelineSearcher, timeout time.Duration, keywords []string, instructions string, logger *slog.Logger) *RigorAgent {
	if model == nil {
		panic("agents: model cannot be nil")
	}
	if prompts == nil {
		panic("agents: prompt manager cannot be nil")
	}
	if logger == nil {
		panic("agents: logger cannot be nil")
	}

	return &RigorAgent{
		baseAgent: baseAgent{
			name:         "rigor",
			suggType:     core.SuggestionRigor,
			promptKey:    llm.RigorAnalysisPrompt,
			collection:   retrieval.RigorCollection,
			model:        model,
			prompts:      prompts,
			searcher:     searcher,
			timeout:      timeout,
			instructions: instructions,
			logger:       logger,
		},
		keywords: keywords,
	}
}

// AppliesTo gates on the configured keywords. Matching is case-insensitive
// substring over the section title and content.
func (a *RigorAgent) AppliesTo(section core.Section) bool {
	return paper.MatchesKeywords(section, a.keywords)
}
