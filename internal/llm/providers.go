package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sevigo/goframe/embeddings"
	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/draftproof/paper-warden/internal/config"
)

// newOllamaHTTPClient creates an HTTP client with longer timeouts for
// Ollama requests; local models can take a while to answer.
func newOllamaHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   5 * time.Minute,
	}
}

// NewModel creates an LLM client for the given model name using the
// configured provider.
func NewModel(ctx context.Context, cfg config.AIConfig, modelName string, logger *slog.Logger) (llms.Model, error) {
	switch cfg.LLMProvider {
	case "gemini":
		return gemini.New(ctx,
			gemini.WithModel(modelName),
			gemini.WithAPIKey(cfg.GeminiAPIKey),
		)
	case "ollama":
		return ollama.New(
			ollama.WithServerURL(cfg.OllamaHost),
			ollama.WithHTTPClient(newOllamaHTTPClient()),
			ollama.WithModel(modelName),
			ollama.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}

type callerFunc func(ctx context.Context, prompt string) (string, error)

func (f callerFunc) Call(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// AsCaller narrows a model client to the Caller interface the agents and
// the orchestrator consume.
func AsCaller(model llms.Model) Caller {
	return callerFunc(func(ctx context.Context, prompt string) (string, error) {
		return model.Call(ctx, prompt)
	})
}

// NewEmbedder creates the embedding client used by the guideline vector
// store.
func NewEmbedder(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (embeddings.Embedder, error) {
	var embedderLLM embeddings.Embedder
	var err error

	switch cfg.EmbedderProvider {
	case "gemini":
		embedderLLM, err = gemini.New(ctx,
			gemini.WithEmbeddingModel(cfg.EmbedderModel),
			gemini.WithAPIKey(cfg.GeminiAPIKey),
		)
	case "ollama":
		embedderLLM, err = ollama.New(
			ollama.WithServerURL(cfg.OllamaHost),
			ollama.WithModel(cfg.EmbedderModel),
			ollama.WithHTTPClient(newOllamaHTTPClient()),
			ollama.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unsupported embedder provider: %s", cfg.EmbedderProvider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create embedder LLM: %w", err)
	}
	return embeddings.NewEmbedder(embedderLLM)
}
