package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/draftproof/paper-warden/internal/core"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 64,
	WriteBufferSize: 1024 * 64,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local dev; restrict in production
	},
}

// ProgressReviewer is a reviewer that can stream progress while it runs.
type ProgressReviewer interface {
	core.Reviewer
	ReviewWithProgress(ctx context.Context, req core.ReviewRequest, progress core.ProgressFunc) (*core.ReviewResult, error)
}

// WebSocket message types to the client.
const (
	wsMsgProgress = "progress"
	wsMsgResult   = "result"
	wsMsgError    = "error"
)

// wsMessage is the envelope for messages to the client.
type wsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// WSHandler streams review progress over a websocket. The client sends
// one review request; the server answers with progress events and exactly
// one terminal message (result or error), then closes.
type WSHandler struct {
	reviewer ProgressReviewer
	logger   *slog.Logger
}

// NewWSHandler creates the websocket review handler.
func NewWSHandler(reviewer ProgressReviewer, logger *slog.Logger) *WSHandler {
	return &WSHandler{reviewer: reviewer, logger: logger}
}

// HandleReview upgrades the connection and runs one streamed review.
func (h *WSHandler) HandleReview(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var req core.ReviewRequest
	if err := conn.ReadJSON(&req); err != nil {
		h.sendError(conn, "invalid review request")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		h.sendError(conn, "draft content is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	// Writes are serialized: progress events come from the workflow
	// goroutine while reads below watch for the client going away.
	var writeMu sync.Mutex
	send := func(msg wsMessage) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Debug("websocket write failed", "error", err)
		}
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Cancel the review when the client disconnects mid-run.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	result, err := h.reviewer.ReviewWithProgress(ctx, req, func(ev core.ProgressEvent) {
		send(wsMessage{Type: wsMsgProgress, Data: ev})
	})
	if err != nil {
		h.logger.Warn("streamed review failed", "session_id", req.SessionID, "error", err)
		h.sendError(conn, "review failed: "+err.Error())
		return
	}

	send(wsMessage{Type: wsMsgResult, Data: result})
}

func (h *WSHandler) sendError(conn *websocket.Conn, message string) {
	if err := conn.WriteJSON(wsMessage{Type: wsMsgError, Data: map[string]string{"message": message}}); err != nil {
		h.logger.Debug("websocket write failed", "error", err)
	}
}
