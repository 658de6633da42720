package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driving"
	"github.com/custodia-labs/essaycorpus/internal/logger"
)

// Ensure ScrapeService implements the interface.
var _ driving.ScrapeService = (*ScrapeService)(nil)

// corpusDateLayout is the ISO calendar date stamped on every corpus.
const corpusDateLayout = "2006-01-02"

// ScrapeOptions configures where essays come from and how failures are handled.
type ScrapeOptions struct {
	// BaseURL is the site root that essay links are resolved against.
	BaseURL string
	// IndexPath is the index page, relative to BaseURL.
	IndexPath string
	// Author is recorded on the corpus document.
	Author string
	// SkipFailed omits essays whose fetch fails instead of aborting the run.
	SkipFailed bool
}

// ScrapeService builds the corpus document: discover, fetch, extract, chunk.
// Essays are processed one at a time in link order.
type ScrapeService struct {
	fetcher   driven.Fetcher
	extractor driven.Extractor
	pipeline  driven.PostProcessorPipeline
	opts      ScrapeOptions
	now       func() time.Time
	skipped   []domain.Link
}

// NewScrapeService creates a new scrape service.
func NewScrapeService(
	fetcher driven.Fetcher,
	extractor driven.Extractor,
	pipeline driven.PostProcessorPipeline,
	opts ScrapeOptions,
) *ScrapeService {
	return &ScrapeService{
		fetcher:   fetcher,
		extractor: extractor,
		pipeline:  pipeline,
		opts:      opts,
		now:       time.Now,
	}
}

// SetClock replaces the clock used for the corpus date.
func (s *ScrapeService) SetClock(now func() time.Time) {
	s.now = now
}

// IndexURL returns the resolved index page URL.
func (s *ScrapeService) IndexURL() (string, error) {
	base, err := url.Parse(s.opts.BaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: base url %q: %v", domain.ErrInvalidInput, s.opts.BaseURL, err)
	}
	ref, err := url.Parse(s.opts.IndexPath)
	if err != nil {
		return "", fmt.Errorf("%w: index path %q: %v", domain.ErrInvalidInput, s.opts.IndexPath, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// Run scrapes every essay linked from the index page.
func (s *ScrapeService) Run(ctx context.Context) (*domain.Corpus, error) {
	logger.Section("Scrape")
	s.skipped = nil

	indexURL, err := s.IndexURL()
	if err != nil {
		return nil, err
	}

	logger.Info("fetching index %s", indexURL)
	page, err := s.fetcher.Fetch(ctx, indexURL)
	if err != nil {
		logger.Error("index %s: %v", indexURL, err)
		return nil, fmt.Errorf("fetch index: %w", err)
	}

	links, err := s.extractor.DiscoverLinks(page, s.opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("discover links: %w", err)
	}
	logger.Info("discovered %d essays", len(links))

	essays := make([]domain.Essay, 0, len(links))
	for i, link := range links {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logger.Info("[%d/%d] %s", i+1, len(links), link.Title)
		essay, err := s.scrapeEssay(ctx, link)
		if err != nil {
			if s.opts.SkipFailed && errors.Is(err, domain.ErrFetch) && ctx.Err() == nil {
				logger.Warn("skipping %s: %v", link.URL, err)
				s.skipped = append(s.skipped, link)
				continue
			}
			logger.Error("%s: %v", link.URL, err)
			return nil, fmt.Errorf("essay %q: %w", link.Title, err)
		}

		logger.Debug("%s: %d chars, %d tokens, %d chunks", link.URL, essay.Length, essay.Tokens, len(essay.Chunks))
		essays = append(essays, essay)
	}

	corpus := domain.NewCorpus(s.now().UTC().Format(corpusDateLayout), s.opts.Author, indexURL, essays)
	logger.Info("scraped %d essays, %d chunks, %d tokens", len(corpus.Essays), corpus.ChunkCount(), corpus.Tokens)
	if len(s.skipped) > 0 {
		logger.Warn("%d essays skipped after fetch failures", len(s.skipped))
	}

	return corpus, nil
}

// Skipped returns the essays omitted by the last Run.
func (s *ScrapeService) Skipped() []domain.Link {
	return s.skipped
}

func (s *ScrapeService) scrapeEssay(ctx context.Context, link domain.Link) (domain.Essay, error) {
	page, err := s.fetcher.Fetch(ctx, link.URL)
	if err != nil {
		return domain.Essay{}, err
	}

	essay := s.extractor.Extract(page, link.Title, link.URL)

	chunks, err := s.pipeline.Process(ctx, &essay)
	if err != nil {
		return domain.Essay{}, fmt.Errorf("chunk: %w", err)
	}
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	essay.Chunks = chunks

	return essay, nil
}
