package mcp

import (
	"context"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	hits    []domain.ChunkHit
	records []domain.ChunkRecord
	err     error

	lastQuery string
	lastLimit int
	lastURL   string
}

func (m *mockSearchService) Search(_ context.Context, query string, limit int) ([]domain.ChunkHit, error) {
	m.lastQuery = query
	m.lastLimit = limit
	return m.hits, m.err
}

func (m *mockSearchService) Chunks(_ context.Context, essayURL string) ([]domain.ChunkRecord, error) {
	m.lastURL = essayURL
	return m.records, m.err
}
