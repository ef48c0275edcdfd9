package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/draftproof/paper-warden/internal/core"
	"github.com/draftproof/paper-warden/internal/storage"
)

// ReviewJob runs one paper review and persists the completed result. It is
// the unit of work executed by the dispatcher's workers.
type ReviewJob struct {
	reviewer core.Reviewer
	store    storage.Store
	logger   *slog.Logger
}

// NewReviewJob creates a review job. The store may be nil when history
// persistence is disabled; results are then only logged.
func NewReviewJob(reviewer core.Reviewer, store storage.Store, logger *slog.Logger) core.Job {
	if reviewer == nil {
		panic("jobs: reviewer cannot be nil")
	}
	if logger == nil {
		panic("jobs: logger cannot be nil")
	}
	return &ReviewJob{reviewer: reviewer, store: store, logger: logger}
}

// Run executes the review for one request.
func (j *ReviewJob) Run(ctx context.Context, req *core.ReviewRequest) error {
	if err := j.validateInputs(req); err != nil {
		j.logger.Error("input validation failed", "error", err)
		return fmt.Errorf("input validation failed: %w", err)
	}

	j.logger.Info("starting review job", "session_id", req.SessionID, "venue", req.TargetVenue)

	result, err := j.reviewer.Review(ctx, *req)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	if j.store != nil {
		if err := j.persist(ctx, req, result); err != nil {
			// The review itself succeeded; a history write failure is not
			// worth failing the job over.
			j.logger.Error("failed to persist review", "session_id", req.SessionID, "error", err)
		}
	}

	j.logger.Info("review job completed",
		"session_id", req.SessionID,
		"suggestions", len(result.Suggestions),
		"duration", result.ProcessingTime)
	return nil
}

func (j *ReviewJob) persist(ctx context.Context, req *core.ReviewRequest, result *core.ReviewResult) error {
	suggestionJSON, err := json.Marshal(result.Suggestions)
	if err != nil {
		return fmt.Errorf("failed to encode suggestions: %w", err)
	}

	return j.store.SaveReview(ctx, &core.StoredReview{
		SessionID:       req.SessionID,
		TargetVenue:     req.TargetVenue,
		SuggestionJSON:  string(suggestionJSON),
		SuggestionCount: len(result.Suggestions),
		SectionCount:    result.SectionCount,
		DurationSeconds: result.ProcessingTime,
	})
}

func (j *ReviewJob) validateInputs(req *core.ReviewRequest) error {
	if req == nil {
		return fmt.Errorf("request cannot be nil")
	}
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("request content cannot be empty")
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return fmt.Errorf("request session id cannot be empty")
	}
	return nil
}
