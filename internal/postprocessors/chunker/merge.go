package chunker

import (
	"github.com/custodia-labs/essaycorpus/internal/core/domain"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
)

// Merge folds every chunk with fewer than threshold tokens into the chunk
// before it in a single forward pass. The receiving chunk's length and token
// count grow by the absorbed chunk's values; the joined text is not
// re-measured. A leading small chunk has no predecessor and stays as is.
func Merge(chunks []domain.Chunk, threshold int) []domain.Chunk {
	result := make([]domain.Chunk, 0, len(chunks))

	for _, c := range chunks {
		if c.ContentTokens < threshold && len(result) > 0 {
			prev := &result[len(result)-1]
			prev.Content += " " + c.Content
			prev.ContentLength += c.ContentLength
			prev.ContentTokens += c.ContentTokens
			continue
		}
		result = append(result, c)
	}

	return result
}

// BuildChunks splits the essay within budget tokens and merges chunks
// below threshold into their predecessors.
func BuildChunks(essay *domain.Essay, tok driven.Tokenizer, budget, threshold int) []domain.Chunk {
	return Merge(Split(essay, tok, budget), threshold)
}
