// Package handler provides the HTTP handlers for the review API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/draftproof/paper-warden/internal/core"
	"github.com/draftproof/paper-warden/internal/paper"
	"github.com/draftproof/paper-warden/internal/storage"
)

// maxUploadBytes bounds draft uploads. Research drafts are text; anything
// bigger than this is not a paper.
const maxUploadBytes = 32 << 20

// ReviewHandler serves the synchronous and asynchronous review endpoints.
type ReviewHandler struct {
	reviewer   core.Reviewer
	dispatcher core.JobDispatcher
	store      storage.Store
	logger     *slog.Logger
}

// NewReviewHandler creates the review handler. The store may be nil when
// history persistence is disabled; the history endpoint then returns 404.
func NewReviewHandler(reviewer core.Reviewer, dispatcher core.JobDispatcher, store storage.Store, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewer:   reviewer,
		dispatcher: dispatcher,
		store:      store,
		logger:     logger,
	}
}

// HandleReview runs a review synchronously and returns the full result.
// It accepts either a JSON body or a multipart upload with a markdown or
// PDF file in the "file" field.
func (h *ReviewHandler) HandleReview(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.reviewer.Review(r.Context(), *req)
	if err != nil {
		var parseErr *core.ParseError
		if errors.As(err, &parseErr) {
			http.Error(w, parseErr.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.logger.Error("review failed", "session_id", req.SessionID, "error", err)
		http.Error(w, "review failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleAsyncReview queues a review for background processing and returns
// the session id the result will be stored under.
func (h *ReviewHandler) HandleAsyncReview(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), req); err != nil {
		h.logger.Warn("review job rejected", "session_id", req.SessionID, "error", err)
		http.Error(w, "review queue is full, try again later", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"session_id": req.SessionID})
}

// HandleGetReview returns the latest stored review for a session.
func (h *ReviewHandler) HandleGetReview(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "session id is required", http.StatusBadRequest)
		return
	}
	if h.store == nil {
		http.Error(w, "review history is not enabled", http.StatusNotFound)
		return
	}

	stored, err := h.store.GetLatestBySession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "no review found for session", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load review", "session_id", sessionID, "error", err)
		http.Error(w, "failed to load review", http.StatusInternalServerError)
		return
	}

	var suggestions []core.Suggestion
	if err := json.Unmarshal([]byte(stored.SuggestionJSON), &suggestions); err != nil {
		h.logger.Error("stored suggestions are corrupt", "session_id", sessionID, "error", err)
		http.Error(w, "stored review is unreadable", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, core.ReviewResult{
		Suggestions:    suggestions,
		SessionID:      stored.SessionID,
		ProcessingTime: stored.DurationSeconds,
		SectionCount:   stored.SectionCount,
		Validated:      true,
	})
}

// decodeRequest reads a review request from either JSON or a multipart
// file upload. A missing session id gets a fresh one.
func (h *ReviewHandler) decodeRequest(r *http.Request) (*core.ReviewRequest, error) {
	var req core.ReviewRequest

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		content, err := h.readUpload(r)
		if err != nil {
			return nil, err
		}
		req.Content = content
		req.SessionID = r.FormValue("session_id")
		req.TargetVenue = r.FormValue("target_venue")
	} else {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&req); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
	}

	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("draft content is required")
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	return &req, nil
}

// readUpload extracts draft text from an uploaded file. PDF uploads are
// converted to plain text first.
func (h *ReviewHandler) readUpload(r *http.Request) (string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", fmt.Errorf("invalid multipart form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", fmt.Errorf("draft file is required: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	if strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		// The PDF reader wants a file path, so spill to a temp file.
		tmp, err := os.CreateTemp("", "draft-*.pdf")
		if err != nil {
			return "", fmt.Errorf("failed to stage pdf: %w", err)
		}
		defer os.Remove(tmp.Name())

		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			return "", fmt.Errorf("failed to stage pdf: %w", err)
		}
		tmp.Close()

		text, err := paper.ExtractPDFText(tmp.Name())
		if err != nil {
			return "", fmt.Errorf("failed to extract pdf text: %w", err)
		}
		return text, nil
	}

	return string(data), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
