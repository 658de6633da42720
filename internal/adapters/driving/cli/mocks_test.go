package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/essaycorpus/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/essaycorpus/internal/config"
	"github.com/custodia-labs/essaycorpus/internal/core/domain"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driving"
	"github.com/custodia-labs/essaycorpus/internal/core/services"
)

// mockProvider implements Provider with in-memory parts.
type mockProvider struct {
	settings    *config.Settings
	configStore *memory.ConfigStore
	corpus      *mockCorpusStore
	chunks      driven.ChunkStore
	chunksErr   error
	scrape      *mockScrapeService
	embed       *mockEmbedService
	search      *mockSearchService
	serviceErr  error

	dryRun bool
}

func (m *mockProvider) Settings() *config.Settings               { return m.settings }
func (m *mockProvider) ConfigStore() driven.ConfigStore          { return m.configStore }
func (m *mockProvider) CorpusStore() (driven.CorpusStore, error) { return m.corpus, nil }

func (m *mockProvider) ChunkStore(_ context.Context) (driven.ChunkStore, error) {
	return m.chunks, m.chunksErr
}

func (m *mockProvider) ScrapeService() (driving.ScrapeService, error) {
	if m.serviceErr != nil {
		return nil, m.serviceErr
	}
	return m.scrape, nil
}

func (m *mockProvider) EmbedService(_ context.Context, dryRun bool) (driving.EmbedService, error) {
	m.dryRun = dryRun
	if m.serviceErr != nil {
		return nil, m.serviceErr
	}
	return m.embed, nil
}

func (m *mockProvider) SearchService(_ context.Context) (driving.SearchService, error) {
	if m.serviceErr != nil {
		return nil, m.serviceErr
	}
	return m.search, nil
}

type mockCorpusStore struct {
	path        string
	saved       *domain.Corpus
	saveErr     error
	corpus      *domain.Corpus
	quarantined []domain.QuarantinedRecord
	loadErr     error
}

func (m *mockCorpusStore) Save(_ context.Context, c *domain.Corpus) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = c
	return nil
}

func (m *mockCorpusStore) Load(_ context.Context) (*domain.Corpus, []domain.QuarantinedRecord, error) {
	return m.corpus, m.quarantined, m.loadErr
}

func (m *mockCorpusStore) Path() string { return m.path }

type mockScrapeService struct {
	corpus  *domain.Corpus
	skipped []domain.Link
	err     error
}

func (m *mockScrapeService) Run(_ context.Context) (*domain.Corpus, error) { return m.corpus, m.err }
func (m *mockScrapeService) Skipped() []domain.Link                        { return m.skipped }

type mockEmbedService struct {
	report *domain.LoadReport
	err    error
	loaded *domain.Corpus
}

func (m *mockEmbedService) Load(_ context.Context, c *domain.Corpus) (*domain.LoadReport, error) {
	m.loaded = c
	return m.report, m.err
}

type mockSearchService struct {
	hits    []domain.ChunkHit
	records []domain.ChunkRecord
	err     error

	lastQuery string
	lastLimit int
}

func (m *mockSearchService) Search(_ context.Context, query string, limit int) ([]domain.ChunkHit, error) {
	m.lastQuery = query
	m.lastLimit = limit
	return m.hits, m.err
}

func (m *mockSearchService) Chunks(_ context.Context, _ string) ([]domain.ChunkRecord, error) {
	return m.records, m.err
}

func testCorpus() *domain.Corpus {
	return domain.NewCorpus("2026-10-14", "Paul Graham", "https://www.paulgraham.com/articles.html", []domain.Essay{
		{Title: "A", URL: "https://www.paulgraham.com/a.html", Length: 10, Tokens: 4, Chunks: []domain.Chunk{{Content: "a1"}, {Content: "a2"}}},
		{Title: "B", URL: "https://www.paulgraham.com/b.html", Length: 5, Tokens: 2, Chunks: []domain.Chunk{{Content: "b1"}}},
	})
}

// setupTestProvider installs a fresh mockProvider and returns it.
func setupTestProvider(t *testing.T) *mockProvider {
	t.Helper()

	m := &mockProvider{
		settings:    config.Defaults("test"),
		configStore: memory.NewConfigStore(),
		corpus:      &mockCorpusStore{path: "/tmp/corpus.json"},
		chunks:      memory.NewChunkStore(),
		scrape:      &mockScrapeService{},
		embed:       &mockEmbedService{report: &domain.LoadReport{}},
		search:      &mockSearchService{},
	}

	old := provider
	provider = m
	t.Cleanup(func() { provider = old })
	return m
}

// execute runs rootCmd with args and returns everything it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags()
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags() {
	verbose = false
	scrapeOutput = ""
	scrapeSkipFailed = false
	embedDryRun = false
	searchLimit = services.DefaultSearchLimit
	searchJSON = false
	chunksJSON = false
}
