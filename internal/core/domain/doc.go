// Package domain defines the core business entities for Evidex.
//
// This package is the hexagonal architecture's innermost layer and
// defines the fundamental types:
//
//   - Document: A corpus entry, keyed by title
//   - Chunk: A sentence-aligned, embeddable excerpt of a document
//   - SearchQuery / SearchResult: A ranked similarity lookup
//   - IngestReport / Failure: The accounting of one pipeline run
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
