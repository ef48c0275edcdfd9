package wire

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/draftproof/paper-warden/internal/agents"
	"github.com/draftproof/paper-warden/internal/config"
	"github.com/draftproof/paper-warden/internal/core"
	"github.com/draftproof/paper-warden/internal/llm"
	"github.com/draftproof/paper-warden/internal/logger"
	"github.com/draftproof/paper-warden/internal/retrieval"
	"github.com/draftproof/paper-warden/internal/review"
)

// InitializePipeline builds the review workflow and guideline uploader
// without the HTTP server or database, for command-line use.
func InitializePipeline(ctx context.Context) (*review.Workflow, *retrieval.Uploader, *config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	slogLogger := logger.New(cfg.Logger, nil)
	workflow, uploader, err := buildPipeline(ctx, cfg, slogLogger)
	if err != nil {
		return nil, nil, nil, err
	}
	return workflow, uploader, cfg, nil
}

// buildPipeline constructs the review workflow and the guideline uploader
// shared by the server and the CLI.
func buildPipeline(ctx context.Context, cfg *config.Config, slogLogger *slog.Logger) (*review.Workflow, *retrieval.Uploader, error) {
	// Guideline retrieval stack
	embedder, err := llm.NewEmbedder(ctx, cfg.AI, slogLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	vectorStore := retrieval.NewQdrantVectorStore(cfg.Retrieval.QdrantHost, embedder, slogLogger)
	uploader := retrieval.NewUploader(vectorStore, slogLogger)

	var searcher agents.GuidelineSearcher
	if cfg.Retrieval.Enabled {
		retriever, err := retrieval.NewRetriever(vectorStore, retrieval.NewLexicalReranker(), cfg.Retrieval, slogLogger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create retriever: %w", err)
		}
		searcher = retriever
	}

	// Models, one client per distinct model name
	models := make(map[string]llm.Caller)
	modelFor := func(role string) (llm.Caller, error) {
		name := cfg.AI.ModelFor(role)
		if m, ok := models[name]; ok {
			return m, nil
		}
		model, err := llm.NewModel(ctx, cfg.AI, name, slogLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s model %q: %w", role, name, err)
		}
		caller := llm.AsCaller(model)
		models[name] = caller
		return caller, nil
	}

	clarityModel, err := modelFor("clarity")
	if err != nil {
		return nil, nil, err
	}
	rigorModel, err := modelFor("rigor")
	if err != nil {
		return nil, nil, err
	}
	orchestratorModel, err := modelFor("orchestrator")
	if err != nil {
		return nil, nil, err
	}

	// Prompts and venue profiles
	promptMgr, err := llm.NewPromptManager()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prompt manager: %w", err)
	}
	profiles, err := core.LoadVenueProfiles(cfg.Review.VenuesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load venue profiles: %w", err)
	}

	// Workflow
	agentFactory := agents.NewFactory(clarityModel, rigorModel, promptMgr, searcher, cfg.Review, profiles, slogLogger)
	orchestrator := review.NewOrchestrator(orchestratorModel, promptMgr, cfg.Review.OrchestratorTimeout, cfg.Review.MinValidationFindings, slogLogger)
	workflow := review.NewWorkflow(agentFactory, orchestrator, cfg.Review.MaxSectionTokens, slogLogger)

	return workflow, uploader, nil
}
