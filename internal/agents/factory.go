package agents

import (
	"log/slog"
	"strings"

	"github.com/draftproof/paper-warden/internal/config"
	"github.com/draftproof/paper-warden/internal/core"
	"github.com/draftproof/paper-warden/internal/llm"
)

// NewFactory returns a per-request agent builder. Agents are rebuilt for
// every request because the target venue can add prompt instructions and
// widen the rigor keyword gate.
func NewFactory(
	clarityModel, rigorModel llm.Caller,
	prompts *llm.PromptManager,
	searcher GuidelineSearcher,
	reviewCfg config.ReviewConfig,
	profiles core.VenueProfiles,
	logger *slog.Logger,
) func(core.ReviewRequest) []core.Agent {
	return func(req core.ReviewRequest) []core.Agent {
		profile := profiles.Lookup(req.TargetVenue)
		instructions := strings.Join(profile.CustomInstructions, "\n")

		keywords := reviewCfg.RigorKeywords
		if len(profile.ExtraRigorKeywords) > 0 {
			keywords = append(append([]string{}, keywords...), profile.ExtraRigorKeywords...)
		}

		return []core.Agent{
			NewClarityAgent(clarityModel, prompts, searcher, reviewCfg.AgentTimeout, instructions, logger),
			NewRigorAgent(rigorModel, prompts, searcher, reviewCfg.AgentTimeout, keywords, instructions, logger),
		}
	}
}
