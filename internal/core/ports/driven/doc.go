// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - EmbeddingService: Converts text into fixed-dimension vectors
//   - VectorStore: Durable chunk + vector persistence and ranking
//   - DocumentSource: Yields the documents of one ingestion corpus
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
