package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorIndex, which searches stored vectors.
// EmbeddingService generates the query vector; VectorIndex matches it
// against the corpus.
//
// Embeddings are not memoized: the query text changes on every
// keystroke-driven request, so each call is one outbound HTTP call.
// Retry policy belongs to the caller, not the implementation.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// The result is always Dimensions() long; a shorter or longer vector
	// from the backing model is reported as domain.ErrDimensionMismatch.
	// Other failures wrap domain.ErrEmbedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size. This must match the
	// vector store's configured dimensionality.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup to fail fast on misconfiguration.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
