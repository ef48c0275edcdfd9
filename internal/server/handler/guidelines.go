package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Uploader ingests guideline markdown for one category.
type Uploader interface {
	Upload(ctx context.Context, category, source, content string) (int, error)
}

// guidelineRequest is the JSON body of a guideline upload.
type guidelineRequest struct {
	Category string `json:"category"`
	Source   string `json:"source"`
	Content  string `json:"content"`
}

// GuidelinesHandler ingests guideline documents into the vector store.
type GuidelinesHandler struct {
	uploader Uploader
	logger   *slog.Logger
}

// NewGuidelinesHandler creates the guideline upload handler.
func NewGuidelinesHandler(uploader Uploader, logger *slog.Logger) *GuidelinesHandler {
	return &GuidelinesHandler{uploader: uploader, logger: logger}
}

// HandleUpload stores a guideline document.
func (h *GuidelinesHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	var req guidelineRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		http.Error(w, "guideline content is required", http.StatusBadRequest)
		return
	}
	if req.Category == "" {
		req.Category = "clarity"
	}
	if req.Source == "" {
		req.Source = "api-upload"
	}

	count, err := h.uploader.Upload(r.Context(), req.Category, req.Source, req.Content)
	if err != nil {
		h.logger.Error("guideline upload failed", "category", req.Category, "error", err)
		http.Error(w, "failed to store guidelines", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"category": req.Category,
		"snippets": count,
	})
}
