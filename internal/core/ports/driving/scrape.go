package driving

import (
	"context"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
)

// ScrapeService builds the corpus document from the essay site.
type ScrapeService interface {
	// Run discovers, fetches, extracts and chunks every essay in order.
	// With the default policy the first fetch failure aborts the run.
	Run(ctx context.Context) (*domain.Corpus, error)

	// Skipped returns the essays omitted by the last Run under skip-and-continue.
	Skipped() []domain.Link
}
