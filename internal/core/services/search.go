package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driving"
	"github.com/custodia-labs/essaycorpus/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// DefaultSearchLimit is used when a caller passes a non-positive limit.
const DefaultSearchLimit = 5

// SearchService answers nearest-neighbour queries over stored chunks.
type SearchService struct {
	embedder driven.EmbeddingService
	store    driven.ChunkStore
}

// NewSearchService creates a new search service.
// The embedder is optional; without it only Chunks is available.
func NewSearchService(embedder driven.EmbeddingService, store driven.ChunkStore) *SearchService {
	return &SearchService{
		embedder: embedder,
		store:    store,
	}
}

// Search embeds the query and returns the closest chunks, best first.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]domain.ChunkHit, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.ChunkHit{}, nil
	}

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(vec))

	hits, err := s.store.Nearest(ctx, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("nearest chunks: %w", err)
	}
	logger.Debug("Found %d hits", len(hits))

	return hits, nil
}

// Chunks returns the stored chunks of one essay in chunk order.
func (s *SearchService) Chunks(ctx context.Context, essayURL string) ([]domain.ChunkRecord, error) {
	essayURL = strings.TrimSpace(essayURL)
	if essayURL == "" {
		return nil, fmt.Errorf("%w: essay url is required", domain.ErrInvalidInput)
	}

	records, err := s.store.ByEssayURL(ctx, essayURL)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no chunks for %s", domain.ErrNotFound, essayURL)
	}

	return records, nil
}
