package retrieval

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"

	"github.com/sevigo/goframe/embeddings/sparse"
	"github.com/sevigo/goframe/schema"

	"github.com/draftproof/paper-warden/internal/paper"
)

// Uploader ingests guideline documents into a category collection. A
// guideline file is a markdown document; each section becomes one
// retrievable snippet.
type Uploader struct {
	store  VectorStore
	logger *slog.Logger
}

// NewUploader creates a guideline uploader.
func NewUploader(store VectorStore, logger *slog.Logger) *Uploader {
	if store == nil {
		panic("retrieval: store cannot be nil")
	}
	if logger == nil {
		panic("retrieval: logger cannot be nil")
	}
	return &Uploader{store: store, logger: logger}
}

// UploadFile reads a guideline markdown file and uploads its sections into
// the collection for the given category. It returns the number of snippets
// stored.
func (u *Uploader) UploadFile(ctx context.Context, category, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read guideline file %s: %w", path, err)
	}
	return u.Upload(ctx, category, path, string(content))
}

// Upload splits guideline markdown into sections and stores them. The
// source label identifies where the guideline came from and is kept in the
// snippet metadata.
func (u *Uploader) Upload(ctx context.Context, category, source, content string) (int, error) {
	sections, err := paper.ParseSections(content)
	if err != nil {
		return 0, fmt.Errorf("failed to parse guideline document %s: %w", source, err)
	}
	if len(sections) == 0 {
		return 0, fmt.Errorf("guideline document %s has no content", source)
	}

	collection := CollectionFor(category)
	docs := make([]schema.Document, 0, len(sections))
	for _, section := range sections {
		if section.Content == "" {
			continue
		}

		// Deterministic ID so re-uploading the same file dedupes.
		h := sha256.New()
		fmt.Fprintf(h, "%s:%s:%d:%d", source, section.Title, section.StartLine, section.EndLine)
		sum := h.Sum(nil)
		id := fmt.Sprintf("%x-%x-%x-%x-%x", sum[0:4], sum[4:6], sum[6:8], sum[8:10], sum[10:16])

		doc := schema.NewDocument(section.Content, map[string]any{
			"id":       id,
			"source":   source,
			"title":    section.Title,
			"category": category,
		})

		sparseVec, err := sparse.GenerateSparseVector(ctx, section.Content)
		if err != nil {
			u.logger.Warn("failed to generate sparse vector for guideline snippet",
				"source", source, "title", section.Title, "error", err)
		} else {
			doc.Sparse = sparseVec
		}

		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return 0, fmt.Errorf("guideline document %s has no non-empty sections", source)
	}

	if err := u.store.AddDocuments(ctx, collection, docs); err != nil {
		return 0, err
	}

	u.logger.Info("uploaded guidelines", "category", category, "source", source, "snippets", len(docs))
	return len(docs), nil
}

// Reset drops a category's guideline collection entirely.
func (u *Uploader) Reset(ctx context.Context, category string) error {
	collection := CollectionFor(category)
	if err := u.store.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("failed to reset guideline collection %s: %w", collection, err)
	}
	u.logger.Info("reset guideline collection", "category", category, "collection", collection)
	return nil
}
