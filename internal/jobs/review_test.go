package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/draftproof/paper-warden/internal/core"
	"github.com/draftproof/paper-warden/internal/mocks"
)

func TestReviewJobPersistsResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	reviewer := mocks.NewMockReviewer(ctrl)
	store := mocks.NewMockStore(ctrl)

	reviewer.EXPECT().Review(gomock.Any(), gomock.Any()).Return(&core.ReviewResult{
		Suggestions: []core.Suggestion{
			{ID: "s1", Type: core.SuggestionClarity, Title: "vague claim"},
		},
		SessionID:      "sess-1",
		ProcessingTime: 1.5,
		SectionCount:   4,
		Validated:      true,
	}, nil)

	var saved *core.StoredReview
	store.EXPECT().SaveReview(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r *core.StoredReview) error {
			saved = r
			return nil
		})

	job := NewReviewJob(reviewer, store, slog.Default())
	err := job.Run(context.Background(), &core.ReviewRequest{
		Content: "# Intro\ntext", SessionID: "sess-1", TargetVenue: "NeurIPS",
	})
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Equal(t, "sess-1", saved.SessionID)
	assert.Equal(t, "NeurIPS", saved.TargetVenue)
	assert.Equal(t, 1, saved.SuggestionCount)
	assert.Equal(t, 4, saved.SectionCount)
	assert.InDelta(t, 1.5, saved.DurationSeconds, 1e-9)
	assert.Contains(t, saved.SuggestionJSON, "vague claim")
}

func TestReviewJobValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	reviewer := mocks.NewMockReviewer(ctrl)

	job := NewReviewJob(reviewer, nil, slog.Default())

	assert.Error(t, job.Run(context.Background(), &core.ReviewRequest{Content: "", SessionID: "s"}))
	assert.Error(t, job.Run(context.Background(), &core.ReviewRequest{Content: "x", SessionID: ""}))
	assert.Error(t, job.Run(context.Background(), nil))
}

func TestReviewJobReviewerFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	reviewer := mocks.NewMockReviewer(ctrl)
	store := mocks.NewMockStore(ctrl)

	reviewer.EXPECT().Review(gomock.Any(), gomock.Any()).Return(nil, errors.New("model unreachable"))

	job := NewReviewJob(reviewer, store, slog.Default())
	err := job.Run(context.Background(), &core.ReviewRequest{Content: "x", SessionID: "s"})
	assert.Error(t, err)
}

func TestReviewJobPersistFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	reviewer := mocks.NewMockReviewer(ctrl)
	store := mocks.NewMockStore(ctrl)

	reviewer.EXPECT().Review(gomock.Any(), gomock.Any()).Return(&core.ReviewResult{SessionID: "s"}, nil)
	store.EXPECT().SaveReview(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	job := NewReviewJob(reviewer, store, slog.Default())
	assert.NoError(t, job.Run(context.Background(), &core.ReviewRequest{Content: "x", SessionID: "s"}))
}
