package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Pipeline Errors.
	//
	// Everything below except ErrValidation is caught once at the
	// suggestion service boundary and converted into the uniform
	// empty-result response; nothing propagates to the calling UI.

	// ErrAuth indicates minting a bearer token for the ML API failed,
	// either because credential material is malformed or the token
	// exchange was rejected. Fatal to the request, never retried.
	ErrAuth = errors.New("credential authentication failed")

	// ErrAuthorization indicates the caller lacks read access to the
	// project. Surfaced distinctly from ErrAuth (403, not 401 semantics).
	ErrAuthorization = errors.New("project access denied")

	// ErrEmbedding indicates the embedding call failed.
	ErrEmbedding = errors.New("embedding generation failed")

	// ErrRetrieval indicates the vector store or metadata store is
	// unreachable. Store errors are never masked as empty results below
	// the service boundary.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration indicates the generative model call failed at the
	// transport or HTTP level, or returned an empty response envelope.
	ErrGeneration = errors.New("generation failed")

	// ErrValidation indicates the model's output was malformed. Recovered
	// locally into an empty suggestion list, never propagated.
	ErrValidation = errors.New("model output validation failed")

	// ErrDimensionMismatch indicates an embedding's dimensionality does
	// not match EmbeddingDimensions. This is a fatal configuration error,
	// not a retryable one.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
