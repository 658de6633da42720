package driven

import (
	"context"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
)

// PostProcessor processes essay content to produce chunks.
// PostProcessors are chained in a pipeline (splitting, then merging).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes an essay and returns chunks.
	// If the processor creates chunks (e.g., chunker), it receives nil and returns new chunks.
	// If the processor rewrites chunks (e.g., merger), it receives and returns chunks.
	Process(ctx context.Context, essay *domain.Essay, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the essay through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, essay *domain.Essay) ([]domain.Chunk, error)
}
