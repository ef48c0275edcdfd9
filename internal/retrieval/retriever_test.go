package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/sevigo/goframe/schema"
	"github.com/sevigo/goframe/vectorstores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftproof/paper-warden/internal/config"
)

type fakeStore struct {
	docs        []schema.Document
	searchErr   error
	lastNumDocs int
	lastColl    string
	added       map[string][]schema.Document
	deleted     []string
}

func newFakeStore(docs []schema.Document) *fakeStore {
	return &fakeStore{docs: docs, added: make(map[string][]schema.Document)}
}

func (f *fakeStore) AddDocuments(_ context.Context, collectionName string, docs []schema.Document) error {
	f.added[collectionName] = append(f.added[collectionName], docs...)
	return nil
}

func (f *fakeStore) SimilaritySearch(_ context.Context, collectionName, _ string, numDocs int, _ ...vectorstores.Option) ([]schema.Document, error) {
	f.lastColl = collectionName
	f.lastNumDocs = numDocs
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if numDocs > len(f.docs) {
		return f.docs, nil
	}
	return f.docs[:numDocs], nil
}

func (f *fakeStore) DeleteCollection(_ context.Context, collectionName string) error {
	f.deleted = append(f.deleted, collectionName)
	return nil
}

type failingReranker struct{}

func (failingReranker) Rerank(_ context.Context, _ string, _ []schema.Document) ([]schema.ScoredDocument, error) {
	return nil, errors.New("rerank unavailable")
}

func makeDocs(contents ...string) []schema.Document {
	docs := make([]schema.Document, len(contents))
	for i, c := range contents {
		docs[i] = schema.NewDocument(c, nil)
	}
	return docs
}

func retrievalCfg(strategy string, topK, recallK int) config.RetrievalConfig {
	return config.RetrievalConfig{
		Strategy: strategy,
		TopK:     topK,
		RecallK:  recallK,
		Enabled:  true,
	}
}

func TestParseStrategy(t *testing.T) {
	for _, valid := range []string{"naive", "hybrid", "rerank"} {
		got, err := ParseStrategy(valid)
		require.NoError(t, err)
		assert.Equal(t, Strategy(valid), got)
	}

	_, err := ParseStrategy("cosine")
	assert.Error(t, err)
}

func TestNewRetriever(t *testing.T) {
	store := newFakeStore(nil)
	logger := slog.Default()

	t.Run("bad strategy rejected at construction", func(t *testing.T) {
		_, err := NewRetriever(store, nil, retrievalCfg("bogus", 3, 20), logger)
		assert.Error(t, err)
	})

	t.Run("rerank requires a reranker", func(t *testing.T) {
		_, err := NewRetriever(store, nil, retrievalCfg("rerank", 3, 20), logger)
		assert.Error(t, err)
	})

	t.Run("naive needs no reranker", func(t *testing.T) {
		_, err := NewRetriever(store, nil, retrievalCfg("naive", 3, 20), logger)
		assert.NoError(t, err)
	})
}

func TestRetrieverSearch(t *testing.T) {
	logger := slog.Default()

	t.Run("naive requests topK from the store", func(t *testing.T) {
		store := newFakeStore(makeDocs("a", "b", "c", "d", "e"))
		r, err := NewRetriever(store, nil, retrievalCfg("naive", 3, 20), logger)
		require.NoError(t, err)

		docs, err := r.Search(context.Background(), ClarityCollection, "query")
		require.NoError(t, err)
		assert.Len(t, docs, 3)
		assert.Equal(t, 3, store.lastNumDocs)
		assert.Equal(t, ClarityCollection, store.lastColl)
	})

	t.Run("rerank over-recalls then trims to topK", func(t *testing.T) {
		store := newFakeStore(makeDocs(
			"unrelated text",
			"define every acronym on first use",
			"unrelated filler",
			"acronym overload hurts readability",
			"more filler",
		))
		r, err := NewRetriever(store, NewLexicalReranker(), retrievalCfg("rerank", 2, 5), logger)
		require.NoError(t, err)

		docs, err := r.Search(context.Background(), ClarityCollection, "acronym readability")
		require.NoError(t, err)
		assert.Equal(t, 5, store.lastNumDocs)
		require.Len(t, docs, 2)
		assert.Equal(t, "acronym overload hurts readability", docs[0].PageContent)
		assert.Equal(t, "define every acronym on first use", docs[1].PageContent)
	})

	t.Run("rerank failure falls back to trimmed recall", func(t *testing.T) {
		store := newFakeStore(makeDocs("a", "b", "c", "d"))
		r, err := NewRetriever(store, failingReranker{}, retrievalCfg("rerank", 2, 4), logger)
		require.NoError(t, err)

		docs, err := r.Search(context.Background(), RigorCollection, "query")
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "a", docs[0].PageContent)
		assert.Equal(t, "b", docs[1].PageContent)
	})

	t.Run("recall smaller than topK returns everything", func(t *testing.T) {
		store := newFakeStore(makeDocs("only one"))
		r, err := NewRetriever(store, NewLexicalReranker(), retrievalCfg("rerank", 3, 10), logger)
		require.NoError(t, err)

		docs, err := r.Search(context.Background(), ClarityCollection, "query")
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("store error propagates", func(t *testing.T) {
		store := newFakeStore(nil)
		store.searchErr = errors.New("qdrant down")
		r, err := NewRetriever(store, nil, retrievalCfg("naive", 3, 20), logger)
		require.NoError(t, err)

		_, err = r.Search(context.Background(), ClarityCollection, "query")
		assert.Error(t, err)
	})
}

func TestLexicalReranker(t *testing.T) {
	rr := NewLexicalReranker()
	docs := makeDocs(
		"nothing in common",
		"report variance across random seeds",
		"random seeds matter",
	)

	scored, err := rr.Rerank(context.Background(), "random seeds variance", docs)
	require.NoError(t, err)
	require.Len(t, scored, 3)
	assert.Equal(t, "report variance across random seeds", scored[0].PageContent)
	assert.Equal(t, "random seeds matter", scored[1].PageContent)
	assert.Equal(t, "nothing in common", scored[2].PageContent)
	assert.Greater(t, scored[0].Score, scored[1].Score)
}

func TestCollectionFor(t *testing.T) {
	assert.Equal(t, RigorCollection, CollectionFor("rigor"))
	assert.Equal(t, RigorCollection, CollectionFor("Rigor"))
	assert.Equal(t, ClarityCollection, CollectionFor("clarity"))
	assert.Equal(t, ClarityCollection, CollectionFor("anything-else"))
}

func TestUploader(t *testing.T) {
	logger := slog.Default()

	t.Run("splits guideline markdown into snippets", func(t *testing.T) {
		store := newFakeStore(nil)
		u := NewUploader(store, logger)

		content := "# Be precise\nAvoid vague quantifiers.\n\n# Cite evidence\nEvery claim needs support.\n"
		n, err := u.Upload(context.Background(), "clarity", "style.md", content)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		docs := store.added[ClarityCollection]
		require.Len(t, docs, 2)
		assert.Equal(t, "style.md", docs[0].Metadata["source"])
		assert.Equal(t, "Be precise", docs[0].Metadata["title"])
		assert.Equal(t, "clarity", docs[0].Metadata["category"])
		assert.NotEmpty(t, docs[0].Metadata["id"])
	})

	t.Run("re-upload yields identical ids", func(t *testing.T) {
		store := newFakeStore(nil)
		u := NewUploader(store, logger)
		content := "# Rule\nBody.\n"

		_, err := u.Upload(context.Background(), "rigor", "rules.md", content)
		require.NoError(t, err)
		_, err = u.Upload(context.Background(), "rigor", "rules.md", content)
		require.NoError(t, err)

		docs := store.added[RigorCollection]
		require.Len(t, docs, 2)
		assert.Equal(t, docs[0].Metadata["id"], docs[1].Metadata["id"])
	})

	t.Run("empty document rejected", func(t *testing.T) {
		store := newFakeStore(nil)
		u := NewUploader(store, logger)

		_, err := u.Upload(context.Background(), "clarity", "empty.md", "")
		assert.Error(t, err)
	})

	t.Run("reset deletes the category collection", func(t *testing.T) {
		store := newFakeStore(nil)
		u := NewUploader(store, logger)

		require.NoError(t, u.Reset(context.Background(), "rigor"))
		assert.Equal(t, []string{RigorCollection}, store.deleted)
	})
}
