package retrieval

import (
	"context"
	"sort"
	"strings"

	"github.com/sevigo/goframe/schema"
)

// lexicalReranker reorders recall candidates by term overlap with the
// query. It is deliberately cheap: the dense recall already did the
// semantic work, this stage just pushes exact-term matches to the front.
type lexicalReranker struct{}

// NewLexicalReranker returns a reranker that scores documents by query
// term overlap.
func NewLexicalReranker() schema.Reranker {
	return &lexicalReranker{}
}

func (l *lexicalReranker) Rerank(_ context.Context, query string, docs []schema.Document) ([]schema.ScoredDocument, error) {
	terms := queryTerms(query)

	scored := make([]schema.ScoredDocument, len(docs))
	for i, doc := range docs {
		scored[i] = schema.ScoredDocument{
			Document: doc,
			Score:    overlapScore(terms, doc.PageContent),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored, nil
}

// queryTerms lowercases and splits the query, dropping terms too short to
// be discriminative.
func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= 3 {
			terms = append(terms, f)
		}
	}
	return terms
}

func overlapScore(terms []string, content string) float64 {
	if len(terms) == 0 || content == "" {
		return 0
	}
	lower := strings.ToLower(content)
	var hits int
	for _, term := range terms {
		if strings.Contains(lower, term) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}
