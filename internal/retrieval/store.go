// Package retrieval fetches writing-guideline snippets that ground the
// review agents. Guidelines live in Qdrant, one collection per critique
// category, and can be searched naively, hybrid (dense plus sparse) or with
// a rerank stage on top.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sevigo/goframe/embeddings"
	"github.com/sevigo/goframe/schema"
	"github.com/sevigo/goframe/vectorstores"
	"github.com/sevigo/goframe/vectorstores/qdrant"
)

// Guideline collections, one per critique category.
const (
	ClarityCollection = "guidelines_clarity"
	RigorCollection   = "guidelines_rigor"
)

// CollectionFor maps a critique category to its guideline collection.
// Unknown categories fall back to the clarity collection.
func CollectionFor(category string) string {
	if strings.EqualFold(category, "rigor") {
		return RigorCollection
	}
	return ClarityCollection
}

// VectorStore defines the contract for interacting with the guideline
// vector database.
type VectorStore interface {
	// AddDocuments embeds and stores documents into a collection.
	AddDocuments(ctx context.Context, collectionName string, docs []schema.Document) error

	// SimilaritySearch finds the most relevant documents for a query.
	SimilaritySearch(ctx context.Context, collectionName, query string, numDocs int, opts ...vectorstores.Option) ([]schema.Document, error)

	// DeleteCollection removes a collection and all its data.
	DeleteCollection(ctx context.Context, collectionName string) error
}

// qdrantVectorStore implements VectorStore using Qdrant as the backend.
type qdrantVectorStore struct {
	qdrantHost string
	embedder   embeddings.Embedder
	logger     *slog.Logger
}

// NewQdrantVectorStore creates a new Qdrant-backed guideline store.
func NewQdrantVectorStore(qdrantHost string, embedder embeddings.Embedder, logger *slog.Logger) VectorStore {
	return &qdrantVectorStore{
		qdrantHost: qdrantHost,
		embedder:   embedder,
		logger:     logger,
	}
}

// getStoreForCollection creates a Qdrant client for the given collection.
func (q *qdrantVectorStore) getStoreForCollection(collectionName string) (vectorstores.VectorStore, error) {
	if strings.TrimSpace(collectionName) == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}
	return qdrant.New(
		qdrant.WithHost(q.qdrantHost),
		qdrant.WithEmbedder(q.embedder),
		qdrant.WithCollectionName(collectionName),
		qdrant.WithLogger(q.logger),
	)
}

func (q *qdrantVectorStore) AddDocuments(ctx context.Context, collectionName string, docs []schema.Document) error {
	store, err := q.getStoreForCollection(collectionName)
	if err != nil {
		return fmt.Errorf("failed to get qdrant store for collection %s: %w", collectionName, err)
	}

	_, err = store.AddDocuments(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to add documents to qdrant collection %s: %w", collectionName, err)
	}
	return nil
}

func (q *qdrantVectorStore) SimilaritySearch(ctx context.Context, collectionName, query string, numDocs int, opts ...vectorstores.Option) ([]schema.Document, error) {
	store, err := q.getStoreForCollection(collectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get qdrant store for collection %s: %w", collectionName, err)
	}

	return store.SimilaritySearch(ctx, query, numDocs, opts...)
}

func (q *qdrantVectorStore) DeleteCollection(ctx context.Context, collectionName string) error {
	store, err := q.getStoreForCollection(collectionName)
	if err != nil {
		return fmt.Errorf("failed to get qdrant store for collection %s: %w", collectionName, err)
	}

	return store.DeleteCollection(ctx, collectionName)
}
