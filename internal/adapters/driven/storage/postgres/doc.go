// Package postgres implements the VectorStore port on PostgreSQL with
// the pgvector extension. Similarity ranking happens inside the
// database using the cosine distance operator, so only the requested
// result window crosses the wire.
package postgres
