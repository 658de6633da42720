package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/essaycorpus/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/essaycorpus/internal/core/domain"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
// Used by tests and by embed --dry-run.
type ChunkStore struct {
	mu      sync.RWMutex
	records map[string]domain.ChunkRecord
	order   []string
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		records: make(map[string]domain.ChunkRecord),
	}
}

// Save stores or replaces a record.
func (s *ChunkStore) Save(_ context.Context, record domain.ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.ID]; !ok {
		s.order = append(s.order, record.ID)
	}
	s.records[record.ID] = record
	return nil
}

// ByEssayURL returns the records of one essay ordered by chunk index.
func (s *ChunkStore) ByEssayURL(_ context.Context, essayURL string) ([]domain.ChunkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.ChunkRecord{}
	for _, id := range s.order {
		if r := s.records[id]; r.EssayURL == essayURL {
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ChunkIndex < result[j].ChunkIndex
	})
	return result, nil
}

// Nearest returns the k most similar records, best first.
func (s *ChunkStore) Nearest(_ context.Context, query []float32, k int) ([]domain.ChunkHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranker := similarity.NewRanker(query, k)
	for _, id := range s.order {
		ranker.Add(s.records[id])
	}
	return ranker.Hits(), nil
}

// Count returns the number of stored records.
func (s *ChunkStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Close is a no-op for the in-memory store.
func (s *ChunkStore) Close() error {
	return nil
}
