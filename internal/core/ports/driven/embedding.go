package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The service is initialized once at process start and shared read-only
// afterwards; it is never reloaded mid-run. A failure to initialize is
// fatal at startup, not retried silently.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, one vector per
	// input, in input order. More efficient than calling Embed in a loop.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 384, 768, 1536).
	// Every vector the service returns has exactly this length, and it
	// must match the VectorStore's configured dimension.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the provider is reachable with a lightweight request.
	// Run at startup before serving traffic or starting an ingestion run.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
