package core

import (
	"context"
	"time"
)

// ReviewRequest is the single operation the pipeline exposes downstream.
type ReviewRequest struct {
	// Content is the raw markdown of the paper draft.
	Content   string `json:"content"`
	SessionID string `json:"session_id"`
	// TargetVenue optionally names a venue profile whose instructions are
	// folded into the agent prompts.
	TargetVenue string `json:"target_venue,omitempty"`
}

// ReviewResult is what a completed review returns. A review always
// completes with a (possibly empty, possibly unfiltered) suggestion list;
// degraded sub-steps never surface as a failed review.
type ReviewResult struct {
	Suggestions    []Suggestion `json:"suggestions"`
	SessionID      string       `json:"session_id"`
	ProcessingTime float64      `json:"processing_time"`
	// SectionCount is the number of sections the parser produced.
	SectionCount int `json:"section_count"`
	// Validated is false when the orchestrator failed and the result is
	// the raw union of all findings.
	Validated bool `json:"validated"`
}

// Reviewer runs the full critique pipeline for one paper draft.
type Reviewer interface {
	Review(ctx context.Context, req ReviewRequest) (*ReviewResult, error)
}

// Agent issues one external model call per section to produce suggestions.
type Agent interface {
	// Name identifies the agent in logs and progress events.
	Name() string
	// AppliesTo reports whether the agent wants to analyze the section.
	// It must be pure and deterministic.
	AppliesTo(section Section) bool
	// Analyze critiques a single (already truncated) section. Transport
	// failures are reported as *AgentCallError; malformed model output is
	// handled internally and yields an empty slice.
	Analyze(ctx context.Context, section Section) ([]Suggestion, error)
}

// StoredReview is a completed review persisted for session history.
// In-flight workflow state is never stored, only the finished result.
type StoredReview struct {
	ID              int64     `db:"id"`
	SessionID       string    `db:"session_id"`
	TargetVenue     string    `db:"target_venue"`
	SuggestionJSON  string    `db:"suggestion_json"`
	SuggestionCount int       `db:"suggestion_count"`
	SectionCount    int       `db:"section_count"`
	DurationSeconds float64   `db:"duration_seconds"`
	CreatedAt       time.Time `db:"created_at"`
}

// ProgressStage identifies a workflow checkpoint reported to observers.
type ProgressStage string

const (
	StageParsed     ProgressStage = "parsed"
	StageSection    ProgressStage = "section"
	StageValidating ProgressStage = "validating"
	StageComplete   ProgressStage = "complete"
)

// ProgressEvent is a lightweight notification emitted while a review runs,
// consumed by the websocket handler and the CLI.
type ProgressEvent struct {
	Stage         ProgressStage `json:"stage"`
	SectionTitle  string        `json:"section_title,omitempty"`
	SectionIndex  int           `json:"section_index,omitempty"`
	SectionTotal  int           `json:"section_total,omitempty"`
	FindingsSoFar int           `json:"findings_so_far,omitempty"`
}

// ProgressFunc receives progress events. Implementations must be fast and
// must not block the workflow.
type ProgressFunc func(ProgressEvent)
