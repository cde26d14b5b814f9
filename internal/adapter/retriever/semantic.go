package retriever

import (
	"fmt"

	"faqbot/internal/adapter/vectorindex"
	"faqbot/internal/domain"
	"faqbot/internal/port"
)

// SemanticRetriever ranks FAQ entries by cosine similarity between the
// normalized query and every canonical question.
type SemanticRetriever struct {
	index      *vectorindex.Index
	embedder   port.Embedder
	normalizer port.Normalizer
}

func NewSemanticRetriever(
	index *vectorindex.Index,
	embedder port.Embedder,
	normalizer port.Normalizer,
) *SemanticRetriever {
	return &SemanticRetriever{
		index:      index,
		embedder:   embedder,
		normalizer: normalizer,
	}
}

// TopK normalizes and embeds the query, then scans the whole index.
func (r *SemanticRetriever) TopK(query string, k int) ([]domain.Candidate, error) {
	if r.index == nil || r.embedder == nil {
		return nil, fmt.Errorf("semantic search not available: index not loaded")
	}

	clean := r.normalizer.Normalize(query)
	embeddings, err := r.embedder.Embed([]string{clean})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding returned empty result")
	}

	results, err := r.index.Search(vectorindex.Normalize(embeddings[0]), k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return results, nil
}

// Lookup resolves a canonical question to its entry.
func (r *SemanticRetriever) Lookup(question string) (domain.FAQEntry, bool) {
	return r.index.Lookup(question)
}
