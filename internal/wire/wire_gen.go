// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"

	"github.com/draftproof/paper-warden/internal/app"
	"github.com/draftproof/paper-warden/internal/config"
	"github.com/draftproof/paper-warden/internal/db"
	"github.com/draftproof/paper-warden/internal/jobs"
	"github.com/draftproof/paper-warden/internal/logger"
	"github.com/draftproof/paper-warden/internal/server"
	"github.com/draftproof/paper-warden/internal/storage"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	slogLogger := logger.New(cfg.Logger, nil)

	// Database (runs embedded migrations)
	dbConn, dbCleanup, err := db.NewDatabase(&cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Storage
	store := storage.NewStore(dbConn.DB)

	// Review pipeline
	workflow, uploader, err := buildPipeline(ctx, cfg, slogLogger)
	if err != nil {
		dbCleanup()
		return nil, nil, err
	}

	// Background jobs
	reviewJob := jobs.NewReviewJob(workflow, store, slogLogger)
	dispatcher := jobs.NewDispatcher(reviewJob, cfg.Review.MaxWorkers, slogLogger)

	// HTTP transport
	router := server.NewRouter(workflow, dispatcher, store, uploader, slogLogger)
	srv := server.NewServer(ctx, cfg, router, slogLogger)

	// App
	application := app.NewApp(ctx, cfg, srv, dispatcher, dbConn, slogLogger)

	cleanup := func() {
		dbCleanup()
	}

	return application, cleanup, nil
}
