package port

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text.
	Embed(texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// Normalizer canonicalizes text before it is embedded. The same
// implementation must be used when building the corpus and when
// answering queries.
type Normalizer interface {
	Normalize(text string) string
}
