// Package domain defines the core business entities for Veritas.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentChunk: A pre-segmented piece of a source document with its embedding
//   - SimilarityHit: A per-query similarity search result
//   - EvidenceSnippet: A hit enriched with citable file metadata
//   - Suggestion: A validated, typed critical-thinking suggestion
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
