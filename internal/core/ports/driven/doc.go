// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TokenProvider: Mints and caches bearer tokens for the ML API
//   - EmbeddingService: Generates vector embeddings for query text
//   - VectorIndex: Project-scoped similarity search over stored chunks
//   - GenerativeService: Invokes the generative model
//   - FileStore: Batched file metadata lookups for citations
//   - ProjectStore: Project goal lookup and membership checks
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
