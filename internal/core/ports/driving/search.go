package driving

import (
	"context"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
)

// SearchService answers queries against the stored chunk records.
type SearchService interface {
	// Search embeds query and returns the limit nearest chunks.
	Search(ctx context.Context, query string, limit int) ([]domain.ChunkHit, error)

	// Chunks returns the stored chunks of one essay in chunk order.
	Chunks(ctx context.Context, essayURL string) ([]domain.ChunkRecord, error)
}
