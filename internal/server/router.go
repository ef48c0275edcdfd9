package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/draftproof/paper-warden/internal/core"
	"github.com/draftproof/paper-warden/internal/server/handler"
	"github.com/draftproof/paper-warden/internal/storage"
)

// NewRouter creates and configures the HTTP router with middleware and API routes.
func NewRouter(reviewer handler.ProgressReviewer, dispatcher core.JobDispatcher, store storage.Store, uploader handler.Uploader, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Configure middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Minute))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		reviewHandler := handler.NewReviewHandler(reviewer, dispatcher, store, logger)
		r.Post("/review", reviewHandler.HandleReview)
		r.Post("/jobs/review", reviewHandler.HandleAsyncReview)
		r.Get("/reviews/{sessionID}", reviewHandler.HandleGetReview)

		guidelinesHandler := handler.NewGuidelinesHandler(uploader, logger)
		r.Post("/guidelines", guidelinesHandler.HandleUpload)
	})

	// Streaming review progress
	wsHandler := handler.NewWSHandler(reviewer, logger)
	r.Get("/ws/review", wsHandler.HandleReview)

	return r
}
