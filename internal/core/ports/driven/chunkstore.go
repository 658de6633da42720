package driven

import (
	"context"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
)

// ChunkStore persists chunk records with their embeddings.
// Backed by SQLite by default, MongoDB optionally.
type ChunkStore interface {
	// Save inserts or replaces the record with the same ID.
	Save(ctx context.Context, record domain.ChunkRecord) error

	// ByEssayURL returns all records for one essay ordered by chunk index.
	ByEssayURL(ctx context.Context, essayURL string) ([]domain.ChunkRecord, error)

	// Nearest returns the k records most similar to query, best first.
	// Records without an embedding are ignored.
	Nearest(ctx context.Context, query []float32, k int) ([]domain.ChunkHit, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
