// Package app holds the assembled application and its lifecycle. The
// actual dependency construction lives in internal/wire.
package app

import (
	"context"
	"log/slog"

	"github.com/draftproof/paper-warden/internal/config"
	"github.com/draftproof/paper-warden/internal/db"
	"github.com/draftproof/paper-warden/internal/jobs"
	"github.com/draftproof/paper-warden/internal/server"
)

// App holds the main application components.
type App struct {
	ctx        context.Context
	cfg        *config.Config
	server     *server.Server
	dispatcher *jobs.Dispatcher
	dbConn     *db.DB
	logger     *slog.Logger
}

// NewApp bundles the already-wired components into a runnable application.
func NewApp(ctx context.Context, cfg *config.Config, srv *server.Server, dispatcher *jobs.Dispatcher, dbConn *db.DB, logger *slog.Logger) *App {
	return &App{
		ctx:        ctx,
		cfg:        cfg,
		server:     srv,
		dispatcher: dispatcher,
		dbConn:     dbConn,
		logger:     logger,
	}
}

// Start runs the HTTP server and blocks until shutdown.
func (a *App) Start() error {
	a.logger.Info("starting paper-warden",
		"server_port", a.cfg.Server.Port,
		"max_workers", a.cfg.Review.MaxWorkers)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	a.logger.Info("shutting down paper-warden services")

	// Stop the HTTP server first to prevent new incoming requests.
	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
		// Continue to stop other components even if the server failed.
	}

	// Stop the job dispatcher, allowing in-flight jobs to finish.
	a.dispatcher.Stop()

	a.logger.Info("closing database connection")
	if err := a.dbConn.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}

	if serverErr != nil {
		a.logger.Error("paper-warden stopped with errors", "error", serverErr)
		return serverErr
	}

	a.logger.Info("paper-warden stopped successfully")
	return nil
}
