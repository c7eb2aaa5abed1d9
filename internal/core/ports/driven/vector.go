package driven

import (
	"context"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// ChunkQuery scopes and bounds one similarity search.
type ChunkQuery struct {
	// ProjectID is a hard filter: only chunks belonging to this project
	// are eligible, regardless of similarity.
	ProjectID string

	// Namespaces restricts the search to these logical partitions.
	// Empty means [domain.DefaultNamespace].
	Namespaces []string

	// Threshold excludes hits at or below this similarity. Strictly
	// greater-than: a hit exactly at the threshold is not returned.
	Threshold float64

	// TopK bounds the result count. Fewer (including zero) results are
	// returned when fewer chunks clear the threshold.
	TopK int
}

// VectorIndex is a read-only interface over a similarity-searchable store
// of document chunks. Similarity is 1 - cosine distance. The ingestion
// pipeline that populates the store is a separate system.
type VectorIndex interface {
	// Search returns hits ordered by descending similarity. Ties are
	// broken by underlying store order, which is unspecified; callers
	// must not rely on it. Zero hits is a valid result, not an error.
	// Store unreachability wraps domain.ErrRetrieval and is never masked
	// as an empty result at this layer.
	Search(ctx context.Context, query []float32, q ChunkQuery) ([]domain.SimilarityHit, error)
}
