package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// It is only required by the embed and search commands.
//
// Note: This is separate from ChunkStore which stores and searches vectors.
// EmbeddingService generates vectors; ChunkStore stores them.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// The embed command calls it before walking the corpus.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
