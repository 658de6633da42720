package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
)

// ChunkRecordID derives a stable record ID from the essay URL and chunk
// position, so re-running embed replaces rows instead of duplicating them.
func ChunkRecordID(essayURL string, chunkIndex int) string {
	name := fmt.Sprintf("%s#%d", essayURL, chunkIndex)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// newChunkRecord flattens a chunk and its embedding into a store row.
func newChunkRecord(essayIndex, chunkIndex int, c domain.Chunk, embedding []float32, at time.Time) domain.ChunkRecord {
	return domain.ChunkRecord{
		ID:            ChunkRecordID(c.EssayURL, chunkIndex),
		EssayIndex:    essayIndex,
		ChunkIndex:    chunkIndex,
		EssayTitle:    c.EssayTitle,
		EssayURL:      c.EssayURL,
		EssayDate:     c.EssayDate,
		EssayThanks:   c.EssayThanks,
		Content:       c.Content,
		ContentLength: c.ContentLength,
		ContentTokens: c.ContentTokens,
		Embedding:     embedding,
		CreatedAt:     at,
	}
}
