package review

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/draftproof/paper-warden/internal/core"
	"github.com/draftproof/paper-warden/internal/llm"
)

// orchestratorDecision is the JSON contract of the validation prompt.
type orchestratorDecision struct {
	FinalSuggestions []string `json:"final_suggestions"`
	Reasoning        string   `json:"reasoning"`
	PriorityOrder    []string `json:"priority_order"`
}

// Orchestrator validates the accumulated findings with one structured
// model call: drop redundant or contradictory findings, order the rest by
// priority. Any failure falls back to the raw union; a review never errors
// out at this stage.
type Orchestrator struct {
	model       llm.Caller
	prompts     *llm.PromptManager
	timeout     time.Duration
	minFindings int
	logger      *slog.Logger
}

// NewOrchestrator creates the validation step. minFindings is the number
// of accumulated findings below which the model call is skipped and the
// union returned as-is.
func NewOrchestrator(model llm.Caller, prompts *llm.PromptManager, timeout time.Duration, minFindings int, logger *slog.Logger) *Orchestrator {
	if model == nil {
		panic("review: model cannot be nil")
	}
	if prompts == nil {
		panic("review: prompt manager cannot be nil")
	}
	if logger == nil {
		panic("review: logger cannot be nil")
	}
	return &Orchestrator{
		model:       model,
		prompts:     prompts,
		timeout:     timeout,
		minFindings: minFindings,
		logger:      logger,
	}
}

// Validate returns the final suggestion list and whether the model's
// decision was applied. On any failure the second return is false and the
// result is the unfiltered union in accumulation order.
func (o *Orchestrator) Validate(ctx context.Context, state *ReviewState) ([]core.Suggestion, bool) {
	union := state.Union()

	if len(union) < o.minFindings {
		o.logger.Debug("skipping validation, too few findings",
			"findings", len(union), "minimum", o.minFindings)
		return union, false
	}

	final, err := o.validate(ctx, state, union)
	if err != nil {
		o.logger.Warn("validation failed, returning unfiltered findings", "error", err)
		return union, false
	}
	return final, true
}

func (o *Orchestrator) validate(ctx context.Context, state *ReviewState, union []core.Suggestion) ([]core.Suggestion, error) {
	prompt, err := o.prompts.Render(llm.ValidationPrompt, llm.DefaultProvider, map[string]any{
		"ClarityCount":       len(state.ClarityFindings),
		"RigorCount":         len(state.RigorFindings),
		"ClaritySuggestions": formatFindings(state.ClarityFindings),
		"RigorSuggestions":   formatFindings(state.RigorFindings),
	})
	if err != nil {
		return nil, &core.ValidationError{Err: err}
	}

	raw, err := llm.GenerateWithTimeout(ctx, o.model, prompt, o.timeout)
	if err != nil {
		return nil, &core.ValidationError{Err: err}
	}

	jsonStr, err := llm.ExtractJSON(raw)
	if err != nil {
		return nil, &core.ValidationError{Err: err}
	}
	jsonStr = llm.SanitizeJSON(jsonStr)

	var decision orchestratorDecision
	if err := json.Unmarshal([]byte(jsonStr), &decision); err != nil {
		return nil, &core.ValidationError{Err: fmt.Errorf("undecodable decision: %w", err)}
	}

	final := applyDecision(union, decision)
	if len(final) == 0 {
		// A decision that keeps nothing from a non-empty union means the
		// model ignored the contract and echoed made-up ids.
		return nil, &core.ValidationError{Err: fmt.Errorf("decision matched none of %d findings", len(union))}
	}

	o.logger.Info("validation applied",
		"kept", len(final), "total", len(union), "reasoning", decision.Reasoning)
	return final, nil
}

// applyDecision filters the union to the kept ids and orders them by the
// model's priority ranking. Ids missing from the ranking keep their
// original accumulation order after the ranked ones; unknown ids are
// ignored. The sort is stable, so equal ranks preserve relative order.
func applyDecision(union []core.Suggestion, decision orchestratorDecision) []core.Suggestion {
	keep := make(map[string]bool, len(decision.FinalSuggestions))
	for _, id := range decision.FinalSuggestions {
		keep[id] = true
	}

	rank := make(map[string]int, len(decision.PriorityOrder))
	for i, id := range decision.PriorityOrder {
		rank[id] = i
	}
	unranked := len(decision.PriorityOrder)

	var final []core.Suggestion
	for _, s := range union {
		if keep[s.ID] {
			final = append(final, s)
		}
	}

	sort.SliceStable(final, func(i, j int) bool {
		ri, ok := rank[final[i].ID]
		if !ok {
			ri = unranked
		}
		rj, ok := rank[final[j].ID]
		if !ok {
			rj = unranked
		}
		return ri < rj
	})
	return final
}

// formatFindings renders findings for the validation prompt, one line per
// finding keyed by id.
func formatFindings(findings []core.Suggestion) string {
	var sb strings.Builder
	for _, f := range findings {
		fmt.Fprintf(&sb, "- [%s] (%s, %s) %s", f.ID, f.Section, f.Severity, f.Title)
		if f.SuggestedFix != "" {
			fmt.Fprintf(&sb, " | fix: %s", f.SuggestedFix)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
