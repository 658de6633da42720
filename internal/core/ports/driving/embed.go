package driving

import (
	"context"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
)

// EmbedService embeds every chunk of a corpus and persists the records.
type EmbedService interface {
	// Load walks the corpus in order. Per-chunk failures are recorded in the
	// report and never abort the loop; only context cancellation does.
	Load(ctx context.Context, corpus *domain.Corpus) (*domain.LoadReport, error)
}
