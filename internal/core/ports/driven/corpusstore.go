package driven

import (
	"context"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
)

// CorpusStore reads and writes the corpus snapshot.
// The snapshot is the only hand-off between scraping and embedding.
type CorpusStore interface {
	// Save writes the whole corpus as a single snapshot.
	Save(ctx context.Context, corpus *domain.Corpus) error

	// Load reads and validates the snapshot.
	// Malformed essays and chunks are dropped and reported, not propagated.
	Load(ctx context.Context) (*domain.Corpus, []domain.QuarantinedRecord, error)

	// Path returns the snapshot location.
	Path() string
}
