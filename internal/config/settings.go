// Package config reads typed, validated settings from a ConfigStore.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
	"github.com/custodia-labs/essaycorpus/internal/postprocessors"
)

// Config keys.
//
//nolint:gosec // G101: key names, not credentials.
const (
	KeyScrapeBaseURL       = "scrape.base_url"
	KeyScrapeIndexPath     = "scrape.index_path"
	KeyScrapeAuthor        = "scrape.author"
	KeyScrapeSkipFailed    = "scrape.skip_failed"
	KeyScrapeUserAgent     = "scrape.user_agent"
	KeyScrapeTimeoutSec    = "scrape.timeout_sec"
	KeyScrapeRespectRobots = "scrape.respect_robots"

	KeyChunkerTokenBudget    = "chunker.token_budget"
	KeyChunkerMergeThreshold = "chunker.merge_threshold"
	KeyChunkerTokenizer      = "chunker.tokenizer"
	KeyChunkerProcessors     = "chunker.processors"

	KeyCorpusPath = "corpus.path"

	KeyEmbeddingBaseURL = "embedding.base_url"
	KeyEmbeddingModel   = "embedding.model"
	KeyEmbeddingAPIKey  = "embedding.api_key"
	KeyEmbeddingDelayMS = "embedding.delay_ms"

	KeyStoreBackend         = "store.backend"
	KeyStoreSQLiteDir       = "store.sqlite_dir"
	KeyStoreMongoURI        = "store.mongo_uri"
	KeyStoreMongoDatabase   = "store.mongo_database"
	KeyStoreMongoCollection = "store.mongo_collection"
)

// APIKeyEnv is consulted when embedding.api_key is not configured.
const APIKeyEnv = "OPENAI_API_KEY"

// Tokenizer names.
const (
	TokenizerR50K  = "r50k_base"
	TokenizerWords = "words"
)

// Chunk store backends.
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Settings is the full typed configuration.
type Settings struct {
	Scrape    ScrapeSettings    `json:"scrape"`
	Chunker   ChunkerSettings   `json:"chunker"`
	Corpus    CorpusSettings    `json:"corpus"`
	Embedding EmbeddingSettings `json:"embedding"`
	Store     StoreSettings     `json:"store"`
}

// ScrapeSettings configures the essay scraper and its HTTP fetcher.
type ScrapeSettings struct {
	BaseURL       string        `json:"base_url"`
	IndexPath     string        `json:"index_path"`
	Author        string        `json:"author"`
	SkipFailed    bool          `json:"skip_failed"`
	UserAgent     string        `json:"user_agent"`
	Timeout       time.Duration `json:"timeout"`
	RespectRobots bool          `json:"respect_robots"`
}

// Validate validates the scrape settings.
func (s *ScrapeSettings) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.BaseURL, validation.Required, absoluteURL),
		validation.Field(&s.IndexPath, validation.Required),
		validation.Field(&s.UserAgent, validation.Required),
		validation.Field(&s.Timeout, validation.Required, validation.Min(time.Second)),
	)
}

// ChunkerSettings configures the chunking pipeline.
type ChunkerSettings struct {
	TokenBudget    int      `json:"token_budget"`
	MergeThreshold int      `json:"merge_threshold"`
	Tokenizer      string   `json:"tokenizer"`
	Processors     []string `json:"processors"`
}

// Validate validates the chunker settings.
func (c *ChunkerSettings) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TokenBudget, validation.Required, validation.Min(1)),
		validation.Field(&c.MergeThreshold, validation.Min(0)),
		validation.Field(&c.Tokenizer, validation.Required, validation.In(TokenizerR50K, TokenizerWords)),
		validation.Field(&c.Processors, validation.Required),
	)
}

// PipelineConfig returns the processor options for Registry.BuildPipeline.
func (c *ChunkerSettings) PipelineConfig() map[string]any {
	return map[string]any{
		"token_budget":    c.TokenBudget,
		"merge_threshold": c.MergeThreshold,
	}
}

// CorpusSettings locates the corpus snapshot.
type CorpusSettings struct {
	Path string `json:"path"`
}

// EmbeddingSettings configures the embedding client.
type EmbeddingSettings struct {
	BaseURL string        `json:"base_url"`
	Model   string        `json:"model"`
	APIKey  string        `json:"-"`
	Delay   time.Duration `json:"delay"`
}

// Validate validates the embedding settings. A missing API key is not an
// error here; commands that call the API report it.
func (e *EmbeddingSettings) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.BaseURL, validation.Required, absoluteURL),
		validation.Field(&e.Model, validation.Required),
		validation.Field(&e.Delay, validation.Min(time.Duration(0))),
	)
}

// IsConfigured reports whether an API key is available.
func (e *EmbeddingSettings) IsConfigured() bool {
	return e.APIKey != ""
}

// StoreSettings selects and configures the chunk store.
type StoreSettings struct {
	Backend         string `json:"backend"`
	SQLiteDir       string `json:"sqlite_dir"`
	MongoURI        string `json:"mongo_uri"`
	MongoDatabase   string `json:"mongo_database"`
	MongoCollection string `json:"mongo_collection"`
}

// Validate validates the store settings.
func (s *StoreSettings) Validate() error {
	mongo := s.Backend == BackendMongo
	return validation.ValidateStruct(s,
		validation.Field(&s.Backend, validation.Required, validation.In(BackendSQLite, BackendMongo, BackendMemory)),
		validation.Field(&s.MongoURI, validation.When(mongo, validation.Required)),
		validation.Field(&s.MongoDatabase, validation.When(mongo, validation.Required)),
		validation.Field(&s.MongoCollection, validation.When(mongo, validation.Required)),
	)
}

// Validate validates every section.
func (s *Settings) Validate() error {
	if err := s.Scrape.Validate(); err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	if err := s.Chunker.Validate(); err != nil {
		return fmt.Errorf("chunker: %w", err)
	}
	if err := s.Embedding.Validate(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := s.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// Defaults returns the settings used when nothing is configured.
// Paths are left empty; adapters resolve them under ~/.essaycorpus.
func Defaults(version string) *Settings {
	return &Settings{
		Scrape: ScrapeSettings{
			BaseURL:   "https://www.paulgraham.com/",
			IndexPath: "articles.html",
			Author:    "Paul Graham",
			UserAgent: "essaycorpus/" + version,
			Timeout:   30 * time.Second,
		},
		Chunker: ChunkerSettings{
			TokenBudget:    200,
			MergeThreshold: 100,
			Tokenizer:      TokenizerR50K,
			Processors:     append([]string(nil), postprocessors.DefaultOrder...),
		},
		Embedding: EmbeddingSettings{
			BaseURL: "https://api.openai.com/v1",
			Model:   "text-embedding-ada-002",
			Delay:   100 * time.Millisecond,
		},
		Store: StoreSettings{
			Backend:         BackendSQLite,
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "essaycorpus",
			MongoCollection: "chunks",
		},
	}
}

// Load reads settings from store, falling back to Defaults for every key
// that is not set. The result is not validated.
func Load(store driven.ConfigStore, version string) *Settings {
	s := Defaults(version)
	r := reader{store: store}

	s.Scrape.BaseURL = r.str(KeyScrapeBaseURL, s.Scrape.BaseURL)
	s.Scrape.IndexPath = r.str(KeyScrapeIndexPath, s.Scrape.IndexPath)
	s.Scrape.Author = r.str(KeyScrapeAuthor, s.Scrape.Author)
	s.Scrape.SkipFailed = r.boolean(KeyScrapeSkipFailed, s.Scrape.SkipFailed)
	s.Scrape.UserAgent = r.str(KeyScrapeUserAgent, s.Scrape.UserAgent)
	s.Scrape.Timeout = time.Duration(r.integer(KeyScrapeTimeoutSec, int(s.Scrape.Timeout/time.Second))) * time.Second
	s.Scrape.RespectRobots = r.boolean(KeyScrapeRespectRobots, s.Scrape.RespectRobots)

	s.Chunker.TokenBudget = r.integer(KeyChunkerTokenBudget, s.Chunker.TokenBudget)
	s.Chunker.MergeThreshold = r.integer(KeyChunkerMergeThreshold, s.Chunker.MergeThreshold)
	s.Chunker.Tokenizer = r.str(KeyChunkerTokenizer, s.Chunker.Tokenizer)
	if procs := store.GetStringSlice(KeyChunkerProcessors); len(procs) > 0 {
		s.Chunker.Processors = procs
	}

	s.Corpus.Path = expandHome(r.str(KeyCorpusPath, s.Corpus.Path))

	s.Embedding.BaseURL = r.str(KeyEmbeddingBaseURL, s.Embedding.BaseURL)
	s.Embedding.Model = r.str(KeyEmbeddingModel, s.Embedding.Model)
	s.Embedding.APIKey = r.str(KeyEmbeddingAPIKey, os.Getenv(APIKeyEnv))
	s.Embedding.Delay = time.Duration(r.integer(KeyEmbeddingDelayMS, int(s.Embedding.Delay/time.Millisecond))) * time.Millisecond

	s.Store.Backend = r.str(KeyStoreBackend, s.Store.Backend)
	s.Store.SQLiteDir = expandHome(r.str(KeyStoreSQLiteDir, s.Store.SQLiteDir))
	s.Store.MongoURI = r.str(KeyStoreMongoURI, s.Store.MongoURI)
	s.Store.MongoDatabase = r.str(KeyStoreMongoDatabase, s.Store.MongoDatabase)
	s.Store.MongoCollection = r.str(KeyStoreMongoCollection, s.Store.MongoCollection)

	return s
}

// reader applies defaults over a ConfigStore. A key that is present keeps
// its value even when it is the zero value, so merge_threshold = 0 sticks.
type reader struct {
	store driven.ConfigStore
}

func (r reader) str(key, def string) string {
	if v := r.store.GetString(key); v != "" {
		return v
	}
	return def
}

func (r reader) integer(key string, def int) int {
	if _, ok := r.store.Get(key); !ok {
		return def
	}
	return r.store.GetInt(key)
}

func (r reader) boolean(key string, def bool) bool {
	if _, ok := r.store.Get(key); !ok {
		return def
	}
	return r.store.GetBool(key)
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

var absoluteURL = validation.By(func(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be an absolute URL")
	}
	return nil
})
