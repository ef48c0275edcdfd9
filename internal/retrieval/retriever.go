package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/goframe/embeddings/sparse"
	"github.com/sevigo/goframe/schema"
	"github.com/sevigo/goframe/vectorstores"

	"github.com/draftproof/paper-warden/internal/config"
)

// Strategy selects how guideline snippets are retrieved for a query.
type Strategy string

const (
	// StrategyNaive is a plain dense similarity search.
	StrategyNaive Strategy = "naive"
	// StrategyHybrid adds a sparse lexical signal to the dense search.
	StrategyHybrid Strategy = "hybrid"
	// StrategyRerank over-recalls candidates and reorders them with a
	// reranker before trimming to TopK.
	StrategyRerank Strategy = "rerank"
)

// ParseStrategy validates a configured strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyNaive, StrategyHybrid, StrategyRerank:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unsupported retrieval strategy: %q", s)
	}
}

// Retriever searches guideline collections using a fixed strategy. The
// strategy is resolved once at construction; a bad name fails fast instead
// of surfacing per query.
type Retriever struct {
	store    VectorStore
	reranker schema.Reranker
	strategy Strategy
	topK     int
	recallK  int
	logger   *slog.Logger
}

// NewRetriever builds a retriever from the retrieval config. The reranker
// is only required for the rerank strategy.
func NewRetriever(store VectorStore, reranker schema.Reranker, cfg config.RetrievalConfig, logger *slog.Logger) (*Retriever, error) {
	if store == nil {
		panic("retrieval: store cannot be nil")
	}
	if logger == nil {
		panic("retrieval: logger cannot be nil")
	}

	strategy, err := ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	if strategy == StrategyRerank && reranker == nil {
		return nil, fmt.Errorf("rerank strategy requires a reranker")
	}

	return &Retriever{
		store:    store,
		reranker: reranker,
		strategy: strategy,
		topK:     cfg.TopK,
		recallK:  cfg.RecallK,
		logger:   logger,
	}, nil
}

// Search returns up to TopK guideline snippets for the query from the
// given collection.
func (r *Retriever) Search(ctx context.Context, collectionName, query string) ([]schema.Document, error) {
	switch r.strategy {
	case StrategyHybrid:
		return r.searchHybrid(ctx, collectionName, query, r.topK)
	case StrategyRerank:
		return r.searchRerank(ctx, collectionName, query)
	default:
		return r.store.SimilaritySearch(ctx, collectionName, query, r.topK)
	}
}

func (r *Retriever) searchHybrid(ctx context.Context, collectionName, query string, numDocs int) ([]schema.Document, error) {
	var searchOpts []vectorstores.Option
	sparseVec, err := sparse.GenerateSparseVector(ctx, query)
	if err != nil {
		r.logger.Warn("failed to generate sparse query, using dense only", "error", err)
	} else {
		searchOpts = append(searchOpts, vectorstores.WithSparseQuery(sparseVec))
	}
	return r.store.SimilaritySearch(ctx, collectionName, query, numDocs, searchOpts...)
}

// searchRerank does two-stage retrieval: over-recall RecallK candidates,
// rerank them, keep TopK. When the rerank call fails the base recall is
// trimmed to TopK instead of failing the search.
func (r *Retriever) searchRerank(ctx context.Context, collectionName, query string) ([]schema.Document, error) {
	baseDocs, err := r.searchHybrid(ctx, collectionName, query, r.recallK)
	if err != nil {
		return nil, err
	}
	if len(baseDocs) == 0 {
		return nil, nil
	}

	scoredDocs, err := r.reranker.Rerank(ctx, query, baseDocs)
	if err != nil {
		r.logger.Warn("reranking failed, falling back to base recall", "error", err, "collection", collectionName)
		if len(baseDocs) > r.topK {
			return baseDocs[:r.topK], nil
		}
		return baseDocs, nil
	}

	count := len(scoredDocs)
	if count > r.topK {
		count = r.topK
	}
	docs := make([]schema.Document, count)
	for i := range count {
		docs[i] = scoredDocs[i].Document
		if docs[i].Metadata == nil {
			docs[i].Metadata = make(map[string]any)
		}
		docs[i].Metadata["score"] = scoredDocs[i].Score
	}
	return docs, nil
}
