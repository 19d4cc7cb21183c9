package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or out-of-range input.
	// Validation failures wrap this with the violated constraint.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding provider has not
	// completed initialization or is unreachable. Search cannot run
	// without it.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrStoreUnavailable indicates the vector store cannot be reached.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch indicates a vector whose length does not match
	// the deployment's embedding dimension. This is a configuration
	// error, never a per-record failure.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
