package domain

import "fmt"

// EmbeddingDimensions is the dimensionality shared by every stored chunk
// embedding and every query embedding. The embedding model and the vector
// store are provisioned together around this value; a mismatch anywhere in
// the pipeline is a configuration error, never a retryable condition.
const EmbeddingDimensions = 768

// DefaultNamespace is the namespace assigned to chunks that were ingested
// without an explicit partition.
const DefaultNamespace = "default"

// ChunkMetadata carries optional positional information for a chunk.
// Page is set for paginated sources (PDFs), Timestamp for time-coded
// sources (audio/video transcripts). At most one is expected to be set.
type ChunkMetadata struct {
	// Page is the 1-based page number within the source file.
	Page *int `json:"page,omitempty"`

	// Timestamp is the offset into the source media, in seconds.
	Timestamp *float64 `json:"timestamp,omitempty"`
}

// LocationLabel renders a human-readable citation location.
// Pages render as "Page N", timestamps as "MM:SS" (total minutes, so
// long recordings can exceed 59 in the minutes place). When neither is
// present the label is "Unknown location".
func (m ChunkMetadata) LocationLabel() string {
	switch {
	case m.Page != nil:
		return fmt.Sprintf("Page %d", *m.Page)
	case m.Timestamp != nil:
		total := int(*m.Timestamp)
		return fmt.Sprintf("%02d:%02d", total/60, total%60)
	default:
		return "Unknown location"
	}
}

// DocumentChunk is an immutable record produced by the ingestion pipeline.
// This service only ever reads chunks; it never creates or mutates them.
type DocumentChunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// ProjectID scopes the chunk to a single project.
	ProjectID string

	// FileID links to the source file the chunk was segmented from.
	FileID string

	// Content is the text content of this chunk.
	Content string

	// Embedding is the vector representation, always EmbeddingDimensions long.
	Embedding []float32

	// Metadata carries optional positional information.
	Metadata ChunkMetadata

	// Namespace is the logical partition within the project's corpus.
	Namespace string
}

// SimilarityHit is a transient, per-query search result. Hits are ordered
// by descending similarity and are never persisted.
type SimilarityHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Content is the chunk text, carried along so evidence assembly does
	// not need a second chunk lookup.
	Content string

	// FileID links to the source file.
	FileID string

	// Similarity is 1 - cosine distance, in [0, 1].
	Similarity float64

	// Metadata carries the chunk's positional information.
	Metadata ChunkMetadata
}

// File is the subset of the product's file metadata needed for citations.
type File struct {
	// ID is the file's unique identifier.
	ID string

	// Name is the human-readable file name.
	Name string

	// Type is the file's media type (pdf, audio, text, ...).
	Type string
}

// UnknownFileName is the placeholder used when a hit's file metadata
// cannot be resolved. Missing metadata must never cause evidence loss.
const UnknownFileName = "Unknown file"

// EvidenceSnippet enriches a SimilarityHit with citable file metadata.
type EvidenceSnippet struct {
	// ChunkID is the underlying chunk.
	ChunkID string

	// Content is the quoted chunk text.
	Content string

	// FileID links to the source file.
	FileID string

	// FileName is the resolved file name, or UnknownFileName.
	FileName string

	// LocationLabel is the rendered citation location (see ChunkMetadata).
	LocationLabel string

	// Similarity is the hit's similarity score, preserved for ordering.
	Similarity float64
}
