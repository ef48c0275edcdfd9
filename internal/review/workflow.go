package review

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/draftproof/paper-warden/internal/core"
	"github.com/draftproof/paper-warden/internal/paper"
)

// AgentFactory builds the agent set for one review request. The factory
// runs per request because the target venue can change prompts and the
// rigor keyword gate.
type AgentFactory func(req core.ReviewRequest) []core.Agent

// Workflow is the controller: it owns the ReviewState for one request and
// drives it through the state machine. Sections are processed strictly in
// document order; within a section the applicable agents run concurrently
// and are joined before the cursor advances.
type Workflow struct {
	newAgents    AgentFactory
	orchestrator *Orchestrator
	maxTokens    int
	logger       *slog.Logger
}

// NewWorkflow creates the review workflow controller.
func NewWorkflow(newAgents AgentFactory, orchestrator *Orchestrator, maxSectionTokens int, logger *slog.Logger) *Workflow {
	if newAgents == nil {
		panic("review: agent factory cannot be nil")
	}
	if orchestrator == nil {
		panic("review: orchestrator cannot be nil")
	}
	if logger == nil {
		panic("review: logger cannot be nil")
	}
	return &Workflow{
		newAgents:    newAgents,
		orchestrator: orchestrator,
		maxTokens:    maxSectionTokens,
		logger:       logger,
	}
}

// Review runs the full pipeline for one draft. Degraded sub-steps (agent
// failures, validation failure) never fail the review; only a parse error
// or cancellation does.
func (w *Workflow) Review(ctx context.Context, req core.ReviewRequest) (*core.ReviewResult, error) {
	return w.ReviewWithProgress(ctx, req, nil)
}

// ReviewWithProgress is Review with a progress callback for streaming
// consumers. The callback must not block; a nil callback is fine.
func (w *Workflow) ReviewWithProgress(ctx context.Context, req core.ReviewRequest, progress core.ProgressFunc) (*core.ReviewResult, error) {
	start := time.Now()
	agents := w.newAgents(req)
	state := &ReviewState{}
	emit := func(ev core.ProgressEvent) {
		if progress != nil {
			progress(ev)
		}
	}

	current := StateParsing
	for current != StateDone {
		if err := ctx.Err(); err != nil {
			// Abandoned: partial accumulations are discarded with the state.
			w.logger.Info("review cancelled", "session_id", req.SessionID, "state", current.String())
			return nil, err
		}

		switch current {
		case StateParsing:
			sections, err := paper.ParseSections(req.Content)
			if err != nil {
				return nil, err
			}
			state.Sections = sections
			w.logger.Info("parsed draft",
				"session_id", req.SessionID, "sections", len(sections))
			emit(core.ProgressEvent{Stage: core.StageParsed, SectionTotal: len(sections)})

		case StateAnalyzing:
			section := paper.Truncate(state.Sections[state.Cursor], w.maxTokens)
			if err := w.analyzeSection(ctx, agents, section, state); err != nil {
				return nil, err
			}
			emit(core.ProgressEvent{
				Stage:         core.StageSection,
				SectionTitle:  section.Title,
				SectionIndex:  state.Cursor,
				SectionTotal:  len(state.Sections),
				FindingsSoFar: len(state.ClarityFindings) + len(state.RigorFindings),
			})

		case StateAdvancing:
			state.Cursor++

		case StateValidating:
			emit(core.ProgressEvent{Stage: core.StageValidating})
			final, validated := w.orchestrator.Validate(ctx, state)
			state.FinalSuggestions = final
			state.Complete = true

			result := &core.ReviewResult{
				Suggestions:    final,
				SessionID:      req.SessionID,
				ProcessingTime: time.Since(start).Seconds(),
				SectionCount:   len(state.Sections),
				Validated:      validated,
			}
			emit(core.ProgressEvent{Stage: core.StageComplete, FindingsSoFar: len(final)})
			w.logger.Info("review complete",
				"session_id", req.SessionID,
				"sections", result.SectionCount,
				"suggestions", len(final),
				"validated", validated,
				"duration", result.ProcessingTime)
			return result, nil
		}

		current = nextState(current, state)
	}

	// Unreachable: StateValidating returns.
	return nil, errors.New("review: workflow ended without a result")
}

// analyzeSection fans out the applicable agents for one section and joins
// them. Agent failures degrade to zero findings for that agent; only
// cancellation stops the workflow.
func (w *Workflow) analyzeSection(ctx context.Context, agents []core.Agent, section core.Section, state *ReviewState) error {
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	for _, agent := range agents {
		if !agent.AppliesTo(section) {
			w.logger.Debug("agent skipped section",
				"agent", agent.Name(), "section", section.Title)
			continue
		}

		g.Go(func() error {
			suggestions, err := agent.Analyze(ctx, section)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				w.logger.Warn("agent call failed, counting as zero findings",
					"agent", agent.Name(), "section", section.Title, "error", err)
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			for _, s := range suggestions {
				if s.Type == core.SuggestionRigor {
					state.RigorFindings = append(state.RigorFindings, s)
				} else {
					state.ClarityFindings = append(state.ClarityFindings, s)
				}
			}
			return nil
		})
	}

	return g.Wait()
}
