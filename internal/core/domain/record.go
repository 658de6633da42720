package domain

import "time"

// ChunkRecord is the flat row persisted by a ChunkStore.
type ChunkRecord struct {
	// ID is stable for a given essay URL and chunk index, so reloading upserts.
	ID string

	EssayIndex int
	ChunkIndex int

	EssayTitle  string
	EssayURL    string
	EssayDate   string
	EssayThanks string

	Content       string
	ContentLength int
	ContentTokens int

	Embedding []float32

	CreatedAt time.Time
}

// ChunkHit is a nearest-neighbour search result.
type ChunkHit struct {
	Record ChunkRecord

	// Similarity is the cosine similarity between query and record embedding.
	Similarity float64
}

// QuarantinedRecord describes a snapshot record rejected during load.
// ChunkIndex is -1 when the whole essay was rejected.
type QuarantinedRecord struct {
	EssayIndex int
	ChunkIndex int
	Reason     string
}
