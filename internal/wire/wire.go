//go:build wireinject
// +build wireinject

package wire

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/wire"
	"github.com/jmoiron/sqlx"

	"github.com/draftproof/paper-warden/internal/app"
	"github.com/draftproof/paper-warden/internal/config"
	"github.com/draftproof/paper-warden/internal/core"
	"github.com/draftproof/paper-warden/internal/db"
	"github.com/draftproof/paper-warden/internal/jobs"
	"github.com/draftproof/paper-warden/internal/logger"
	"github.com/draftproof/paper-warden/internal/retrieval"
	"github.com/draftproof/paper-warden/internal/review"
	"github.com/draftproof/paper-warden/internal/server"
	"github.com/draftproof/paper-warden/internal/storage"
)

func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	wire.Build(
		app.NewApp,
		server.NewServer,
		provideRouter,
		jobs.NewDispatcher,
		jobs.NewReviewJob,
		storage.NewStore,
		db.NewDatabase,
		config.LoadConfig,
		provideLogger,
		provideDBConfig,
		provideSqlxDB,
		provideMaxWorkers,
		providePipeline,
		provideWorkflow,
		provideUploader,
		wire.Bind(new(core.Reviewer), new(*review.Workflow)),
	)
	return &app.App{}, nil, nil
}

// pipeline groups the components built together from the model and
// retrieval configuration.
type pipeline struct {
	workflow *review.Workflow
	uploader *retrieval.Uploader
}

func providePipeline(ctx context.Context, cfg *config.Config, log *slog.Logger) (*pipeline, error) {
	workflow, uploader, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &pipeline{workflow: workflow, uploader: uploader}, nil
}

func provideWorkflow(p *pipeline) *review.Workflow { return p.workflow }

func provideUploader(p *pipeline) *retrieval.Uploader { return p.uploader }

func provideLogger(cfg *config.Config) *slog.Logger { return logger.New(cfg.Logger, nil) }

func provideDBConfig(cfg *config.Config) *config.DBConfig { return &cfg.DB }

func provideSqlxDB(conn *db.DB) *sqlx.DB { return conn.DB }

func provideMaxWorkers(cfg *config.Config) int { return cfg.Review.MaxWorkers }

func provideRouter(workflow *review.Workflow, dispatcher *jobs.Dispatcher, store storage.Store, uploader *retrieval.Uploader, log *slog.Logger) http.Handler {
	return server.NewRouter(workflow, dispatcher, store, uploader, log)
}
