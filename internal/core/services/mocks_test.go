package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
)

// --- Mock implementations ---

// mockFetcher serves pages from a map and records the fetch order.
type mockFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	errs    map[string]error
	fetched []string
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, url)
	if err, ok := m.errs[url]; ok {
		return "", err
	}
	page, ok := m.pages[url]
	if !ok {
		return "", &domain.FetchError{URL: url, StatusCode: 404, Err: errors.New("Not Found")}
	}
	return page, nil
}

// mockEmbedder implements driven.EmbeddingService for testing.
type mockEmbedder struct {
	embedding []float32
	failOn    map[string]error
	pingErr   error
	calls     []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls = append(m.calls, text)
	if err, ok := m.failOn[text]; ok {
		return nil, err
	}
	if m.embedding != nil {
		return m.embedding, nil
	}
	return []float32{float32(len(text)), 1}, nil
}

func (m *mockEmbedder) ModelName() string           { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return m.pingErr }
func (m *mockEmbedder) Close() error                 { return nil }

// mockChunkStore records saved records and can reject specific chunks.
type mockChunkStore struct {
	saved   []domain.ChunkRecord
	rejects map[string]error
	hits    []domain.ChunkHit
	byURL   map[string][]domain.ChunkRecord
	err     error
	lastK   int
}

func (m *mockChunkStore) Save(_ context.Context, r domain.ChunkRecord) error {
	if err, ok := m.rejects[r.Content]; ok {
		return err
	}
	m.saved = append(m.saved, r)
	return nil
}

func (m *mockChunkStore) ByEssayURL(_ context.Context, url string) ([]domain.ChunkRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byURL[url], nil
}

func (m *mockChunkStore) Nearest(_ context.Context, _ []float32, k int) ([]domain.ChunkHit, error) {
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

func (m *mockChunkStore) Count(_ context.Context) (int, error) { return len(m.saved), nil }
func (m *mockChunkStore) Close() error { return nil }

// countingPacer counts waits and can cancel the run after n waits.
type countingPacer struct {
	waits    int
	cancelAt int
	cancel   context.CancelFunc
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	if p.cancel != nil && p.waits == p.cancelAt {
		p.cancel()
	}
	return ctx.Err()
}
