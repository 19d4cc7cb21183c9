// Package sqlite provides a SQLite-backed VectorStore for local and
// development deployments.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO. Embeddings are stored as JSON float arrays and
// cosine ranking is computed in Go over a full scan, which is fine for
// the corpus sizes a single-machine deployment holds; the Postgres
// adapter is the production path.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory, applied in filename order.
//
// # Thread Safety
//
// All operations are safe for concurrent use. The store relies on
// database-level locking provided by SQLite in WAL mode.
package sqlite
