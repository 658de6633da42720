// Package app wires adapters to services from settings.
//
// The container builds each dependency on first use, so commands that never
// touch the chunk store or the embedding API do not need them configured.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/essaycorpus/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/essaycorpus/internal/adapters/driven/fetcher/web"
	"github.com/custodia-labs/essaycorpus/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/essaycorpus/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/essaycorpus/internal/adapters/driven/storage/mongo"
	"github.com/custodia-labs/essaycorpus/internal/adapters/driven/storage/snapshot"
	"github.com/custodia-labs/essaycorpus/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/essaycorpus/internal/adapters/driven/tokenizer/tiktoken"
	"github.com/custodia-labs/essaycorpus/internal/adapters/driven/tokenizer/words"
	"github.com/custodia-labs/essaycorpus/internal/config"
	"github.com/custodia-labs/essaycorpus/internal/core/domain"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driving"
	"github.com/custodia-labs/essaycorpus/internal/core/services"
	"github.com/custodia-labs/essaycorpus/internal/logger"
	"github.com/custodia-labs/essaycorpus/internal/normalisers/html"
	"github.com/custodia-labs/essaycorpus/internal/postprocessors"
)

// Container owns every adapter built for one process.
type Container struct {
	configStore driven.ConfigStore
	settings    *config.Settings

	mu         sync.Mutex
	tokenizer  driven.Tokenizer
	embedder   driven.EmbeddingService
	chunkStore driven.ChunkStore
	corpus     driven.CorpusStore
	closers    []func() error
}

// NewContainer loads and validates settings from configStore.
func NewContainer(configStore driven.ConfigStore, version string) (*Container, error) {
	settings := config.Load(configStore, version)
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, configStore.Path(), err)
	}
	return &Container{
		configStore: configStore,
		settings:    settings,
	}, nil
}

// Settings returns the validated settings.
func (c *Container) Settings() *config.Settings {
	return c.settings
}

// ConfigStore returns the store settings were read from.
func (c *Container) ConfigStore() driven.ConfigStore {
	return c.configStore
}

// CorpusStore returns the snapshot store.
func (c *Container) CorpusStore() (driven.CorpusStore, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.corpus != nil {
		return c.corpus, nil
	}
	store, err := snapshot.NewStore(c.settings.Corpus.Path)
	if err != nil {
		return nil, err
	}
	c.corpus = store
	return store, nil
}

// Tokenizer returns the configured tokenizer.
func (c *Container) Tokenizer() (driven.Tokenizer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokenizerLocked()
}

func (c *Container) tokenizerLocked() (driven.Tokenizer, error) {
	if c.tokenizer != nil {
		return c.tokenizer, nil
	}

	switch c.settings.Chunker.Tokenizer {
	case config.TokenizerWords:
		c.tokenizer = words.New()
	case config.TokenizerR50K:
		tok, err := tiktoken.New(tiktoken.DefaultEncoding)
		if err != nil {
			return nil, err
		}
		c.tokenizer = tok
	default:
		return nil, fmt.Errorf("%w: tokenizer %q", domain.ErrUnsupportedType, c.settings.Chunker.Tokenizer)
	}
	logger.Debug("Tokenizer: %s", c.tokenizer.Name())
	return c.tokenizer, nil
}

// ScrapeService builds the scraper with the HTTP fetcher, the HTML
// extractor and the configured chunking pipeline.
func (c *Container) ScrapeService() (driving.ScrapeService, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tok, err := c.tokenizerLocked()
	if err != nil {
		return nil, err
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry, tok)
	pipeline, err := registry.BuildPipeline(c.settings.Chunker.Processors, c.settings.Chunker.PipelineConfig())
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}

	s := c.settings.Scrape
	fetcher := web.New(web.Config{
		UserAgent:     s.UserAgent,
		Timeout:       s.Timeout,
		RespectRobots: s.RespectRobots,
	})

	return services.NewScrapeService(fetcher, html.New(tok), pipeline, services.ScrapeOptions{
		BaseURL:    s.BaseURL,
		IndexPath:  s.IndexPath,
		Author:     s.Author,
		SkipFailed: s.SkipFailed,
	}), nil
}

// EmbedService builds the loader. With dryRun the records go to an
// in-memory store that is discarded with the process.
func (c *Container) EmbedService(ctx context.Context, dryRun bool) (driving.EmbedService, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	embedder, err := c.embedderLocked()
	if err != nil {
		return nil, err
	}

	var store driven.ChunkStore
	if dryRun {
		store = memory.NewChunkStore()
	} else if store, err = c.chunkStoreLocked(ctx); err != nil {
		return nil, err
	}

	return services.NewEmbedService(embedder, store, ratelimit.NewPacer(c.settings.Embedding.Delay)), nil
}

// SearchService builds the query service. Without an API key the service
// still lists chunks and reports ErrEmbeddingUnavailable for queries.
func (c *Container) SearchService(ctx context.Context) (driving.SearchService, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	store, err := c.chunkStoreLocked(ctx)
	if err != nil {
		return nil, err
	}

	embedder, err := c.embedderLocked()
	if errors.Is(err, domain.ErrEmbeddingUnavailable) {
		logger.Debug("Search without embeddings: %v", err)
		return services.NewSearchService(nil, store), nil
	}
	if err != nil {
		return nil, err
	}
	return services.NewSearchService(embedder, store), nil
}

// ChunkStore returns the configured chunk store backend.
func (c *Container) ChunkStore(ctx context.Context) (driven.ChunkStore, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chunkStoreLocked(ctx)
}

func (c *Container) chunkStoreLocked(ctx context.Context) (driven.ChunkStore, error) {
	if c.chunkStore != nil {
		return c.chunkStore, nil
	}

	s := c.settings.Store
	var store driven.ChunkStore
	switch s.Backend {
	case config.BackendSQLite:
		sq, err := sqlite.NewStore(s.SQLiteDir)
		if err != nil {
			return nil, err
		}
		logger.Debug("Chunk store: sqlite at %s", sq.Path())
		store = sq
	case config.BackendMongo:
		mg, err := mongo.NewStore(ctx, mongo.Config{
			URI:        s.MongoURI,
			Database:   s.MongoDatabase,
			Collection: s.MongoCollection,
		})
		if err != nil {
			return nil, err
		}
		logger.Debug("Chunk store: mongo %s/%s", s.MongoDatabase, s.MongoCollection)
		store = mg
	case config.BackendMemory:
		store = memory.NewChunkStore()
	default:
		return nil, fmt.Errorf("%w: store backend %q", domain.ErrUnsupportedType, s.Backend)
	}

	c.chunkStore = store
	c.closers = append(c.closers, store.Close)
	return store, nil
}

func (c *Container) embedderLocked() (driven.EmbeddingService, error) {
	if c.embedder != nil {
		return c.embedder, nil
	}

	e := c.settings.Embedding
	svc, err := openai.NewEmbeddingService(openai.Config{
		APIKey:  e.APIKey,
		BaseURL: e.BaseURL,
		Model:   e.Model,
	})
	if err != nil {
		return nil, err
	}

	c.embedder = svc
	c.closers = append(c.closers, svc.Close)
	return svc, nil
}

// Close releases every adapter that was built.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	c.chunkStore = nil
	c.embedder = nil
	return errors.Join(errs...)
}
