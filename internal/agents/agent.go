// Package agents implements the specialist reviewers. Each agent critiques
// one section per model call and reports findings as suggestions; the
// workflow in the review package decides which agents run on which section.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sevigo/goframe/schema"

	"github.com/draftproof/paper-warden/internal/core"
	"github.com/draftproof/paper-warden/internal/llm"
)

// GuidelineSearcher is the slice of the retrieval layer the agents use.
type GuidelineSearcher interface {
	Search(ctx context.Context, collectionName, query string) ([]schema.Document, error)
}

// queryExcerptLen bounds how much section content goes into the guideline
// query. The full section would drown the title signal.
const queryExcerptLen = 500

// agentResponse is the JSON contract the analysis prompts ask for.
type agentResponse struct {
	Issues []struct {
		LineHint   string `json:"line_hint"`
		Issue      string `json:"issue"`
		Suggestion string `json:"suggestion"`
		Severity   string `json:"severity"`
	} `json:"issues"`
}

// baseAgent carries the mechanics shared by the specialist agents:
// guideline lookup, prompt rendering, the model call and defensive parsing
// of the response.
type baseAgent struct {
	name         string
	suggType     core.SuggestionType
	promptKey    llm.PromptKey
	collection   string
	model        llm.Caller
	prompts      *llm.PromptManager
	searcher     GuidelineSearcher
	timeout      time.Duration
	instructions string
	logger       *slog.Logger
}

func (a *baseAgent) Name() string {
	return a.name
}

// Analyze critiques one section. A transport or timeout failure comes back
// as *core.AgentCallError; a malformed model response is logged and yields
// no findings, because one bad response must not sink the whole review.
func (a *baseAgent) Analyze(ctx context.Context, section core.Section) ([]core.Suggestion, error) {
	guidelines := a.fetchGuidelines(ctx, section)

	prompt, err := a.prompts.Render(a.promptKey, llm.DefaultProvider, map[string]any{
		"SectionTitle":       section.Title,
		"Content":            section.Content,
		"Guidelines":         guidelines,
		"CustomInstructions": a.instructions,
	})
	if err != nil {
		return nil, &core.AgentCallError{Agent: a.name, Section: section.Title, Err: err}
	}

	raw, err := llm.GenerateWithTimeout(ctx, a.model, prompt, a.timeout)
	if err != nil {
		return nil, &core.AgentCallError{Agent: a.name, Section: section.Title, Err: err}
	}

	return a.parseResponse(section, raw), nil
}

// fetchGuidelines pulls the top matching guideline snippets for the
// section. Retrieval is best effort: when the store is unavailable the
// agent runs on model knowledge alone.
func (a *baseAgent) fetchGuidelines(ctx context.Context, section core.Section) string {
	if a.searcher == nil {
		return ""
	}

	query := section.Title
	if excerpt := strings.TrimSpace(section.Content); excerpt != "" {
		if len(excerpt) > queryExcerptLen {
			excerpt = excerpt[:queryExcerptLen]
		}
		query += "\n" + excerpt
	}

	docs, err := a.searcher.Search(ctx, a.collection, query)
	if err != nil {
		a.logger.Warn("guideline retrieval failed, continuing without guidelines",
			"agent", a.name, "section", section.Title, "error", err)
		return ""
	}

	var sb strings.Builder
	for _, doc := range docs {
		if doc.PageContent == "" {
			continue
		}
		fmt.Fprintf(&sb, "- %s\n", strings.TrimSpace(doc.PageContent))
	}
	return sb.String()
}

// parseResponse turns raw model output into suggestions. Anything that does
// not decode is logged and dropped.
func (a *baseAgent) parseResponse(section core.Section, raw string) []core.Suggestion {
	jsonStr, err := llm.ExtractJSON(raw)
	if err != nil {
		a.logger.Warn("agent returned non-JSON output, dropping response",
			"agent", a.name, "section", section.Title, "error", err)
		return nil
	}
	jsonStr = llm.SanitizeJSON(jsonStr)

	var resp agentResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		a.logger.Warn("agent returned undecodable JSON, dropping response",
			"agent", a.name, "section", section.Title, "error", err)
		return nil
	}

	suggestions := make([]core.Suggestion, 0, len(resp.Issues))
	for _, issue := range resp.Issues {
		if strings.TrimSpace(issue.Issue) == "" {
			continue
		}
		desc := issue.Issue
		if hint := strings.TrimSpace(issue.LineHint); hint != "" {
			desc = fmt.Sprintf("%s (near: %s)", desc, hint)
		}
		suggestions = append(suggestions, core.Suggestion{
			ID:           uuid.NewString(),
			Type:         a.suggType,
			Severity:     core.ParseSeverity(issue.Severity),
			Title:        titleFromIssue(issue.Issue),
			Description:  desc,
			Section:      section.Title,
			LineStart:    section.StartLine,
			LineEnd:      section.EndLine,
			SuggestedFix: strings.TrimSpace(issue.Suggestion),
		})
	}
	return suggestions
}

// titleFromIssue derives a short title from the issue text.
func titleFromIssue(issue string) string {
	issue = strings.TrimSpace(issue)
	const maxTitle = 80
	if len(issue) <= maxTitle {
		return issue
	}
	cut := strings.LastIndex(issue[:maxTitle], " ")
	if cut <= 0 {
		cut = maxTitle
	}
	return issue[:cut] + "…"
}
