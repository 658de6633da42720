// Package chunker provides sentence-bounded, token-budgeted chunking of essays.
package chunker

import (
	"context"
	"fmt"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
)

// DefaultTokenBudget is the maximum number of tokens per split chunk.
const DefaultTokenBudget = 200

// DefaultMergeThreshold is the minimum token count for a chunk to stand alone.
const DefaultMergeThreshold = 100

// Processor splits essay content into chunks.
// It implements the PostProcessor interface.
type Processor struct {
	tokenizer driven.Tokenizer
	budget    int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithTokenBudget sets the token budget per chunk.
func WithTokenBudget(budget int) Option {
	return func(p *Processor) {
		if budget > 0 {
			p.budget = budget
		}
	}
}

// New creates a new chunker processor counting tokens with tok.
func New(tok driven.Tokenizer, opts ...Option) *Processor {
	p := &Processor{
		tokenizer: tok,
		budget:    DefaultTokenBudget,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Budget returns the configured token budget.
func (p *Processor) Budget() int {
	return p.budget
}

// Process splits the essay content into chunks.
// Input chunks are ignored; this processor creates new chunks from essay content.
func (p *Processor) Process(_ context.Context, essay *domain.Essay, _ []domain.Chunk) ([]domain.Chunk, error) {
	if p.tokenizer == nil {
		return nil, fmt.Errorf("chunker: no tokenizer configured")
	}
	return Split(essay, p.tokenizer, p.budget), nil
}

// MergeProcessor folds small chunks into their predecessors.
// It implements the PostProcessor interface.
type MergeProcessor struct {
	threshold int
}

// MergeOption configures the merge processor.
type MergeOption func(*MergeProcessor)

// WithThreshold sets the merge threshold in tokens.
// Zero disables merging.
func WithThreshold(threshold int) MergeOption {
	return func(m *MergeProcessor) {
		if threshold >= 0 {
			m.threshold = threshold
		}
	}
}

// NewMerger creates a new merge processor with the given options.
func NewMerger(opts ...MergeOption) *MergeProcessor {
	m := &MergeProcessor{threshold: DefaultMergeThreshold}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the processor name.
func (m *MergeProcessor) Name() string {
	return "merger"
}

// Threshold returns the configured merge threshold.
func (m *MergeProcessor) Threshold() int {
	return m.threshold
}

// Process merges the incoming chunks.
func (m *MergeProcessor) Process(_ context.Context, _ *domain.Essay, chunks []domain.Chunk) ([]domain.Chunk, error) {
	return Merge(chunks, m.threshold), nil
}
