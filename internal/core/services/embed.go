package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driving"
	"github.com/custodia-labs/essaycorpus/internal/logger"
)

// Ensure EmbedService implements the interface.
var _ driving.EmbedService = (*EmbedService)(nil)

// EmbedService embeds corpus chunks and persists them as chunk records.
// Failures are isolated per chunk: the loop logs, records and moves on.
type EmbedService struct {
	embedder driven.EmbeddingService
	store    driven.ChunkStore
	pacer    driven.Pacer
	now      func() time.Time
}

// NewEmbedService creates a new embed service.
// The pacer is optional; without one embedding calls are not spaced.
func NewEmbedService(embedder driven.EmbeddingService, store driven.ChunkStore, pacer driven.Pacer) *EmbedService {
	return &EmbedService{
		embedder: embedder,
		store:    store,
		pacer:    pacer,
		now:      time.Now,
	}
}

// SetClock replaces the clock used for record timestamps.
func (s *EmbedService) SetClock(now func() time.Time) {
	s.now = now
}

// Load embeds and saves every chunk of the corpus in essay order, then
// chunk order. Only context cancellation stops the walk early.
func (s *EmbedService) Load(ctx context.Context, corpus *domain.Corpus) (*domain.LoadReport, error) {
	if corpus == nil {
		return nil, fmt.Errorf("%w: corpus is nil", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.store == nil {
		return nil, fmt.Errorf("%w: no chunk store configured", domain.ErrInvalidInput)
	}

	logger.Section("Embed")
	if err := s.embedder.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	logger.Info("embedding %d chunks with %s", corpus.ChunkCount(), s.embedder.ModelName())

	report := &domain.LoadReport{}
	calls := 0

	for i := range corpus.Essays {
		essay := &corpus.Essays[i]
		for j, chunk := range essay.Chunks {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			if strings.TrimSpace(chunk.Content) == "" {
				s.fail(report, domain.MalformedChunkContent, i, j,
					fmt.Errorf("%w: empty chunk content", domain.ErrInvalidInput))
				continue
			}

			if calls > 0 && s.pacer != nil {
				if err := s.pacer.Wait(ctx); err != nil {
					return report, err
				}
			}
			calls++

			logger.Debug("chunk %d/%d: %q", i, j, chunk.Content)
			vec, err := s.embedder.Embed(ctx, chunk.Content)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return report, ctxErr
				}
				s.fail(report, domain.EmbeddingCallError, i, j, err)
				continue
			}

			record := newChunkRecord(i, j, chunk, vec, s.now().UTC())
			if err := s.store.Save(ctx, record); err != nil {
				s.fail(report, domain.PersistenceError, i, j, err)
				continue
			}

			report.Saved++
			logger.Info("saved %d %d", i, j)
		}
	}

	logger.Info("embed finished: %d saved, %d skipped, %d embedding failures, %d store failures",
		report.Saved, report.Skipped, report.EmbedFailures, report.StoreFailures)

	return report, nil
}

func (s *EmbedService) fail(report *domain.LoadReport, kind domain.LoadErrorKind, i, j int, err error) {
	le := &domain.LoadError{Kind: kind, EssayIndex: i, ChunkIndex: j, Err: err}
	logger.Error("%v", le)
	report.Record(le)
}
