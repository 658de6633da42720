// Package similarity ranks chunk records by cosine similarity.
// Every chunk store backend scans its rows and ranks them here.
package similarity

import (
	"math"
	"sort"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b.
// Vectors of different length or zero magnitude score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Ranker keeps the k best hits seen so far.
type Ranker struct {
	query []float32
	k     int
	hits  []domain.ChunkHit
}

// NewRanker creates a ranker for query keeping at most k hits.
func NewRanker(query []float32, k int) *Ranker {
	return &Ranker{query: query, k: k}
}

// Add scores record against the query. Records without an embedding are ignored.
func (r *Ranker) Add(record domain.ChunkRecord) {
	if len(record.Embedding) == 0 || r.k <= 0 {
		return
	}
	r.hits = append(r.hits, domain.ChunkHit{
		Record:     record,
		Similarity: Cosine(r.query, record.Embedding),
	})
}

// Hits returns the top k hits, best first. Ties keep insertion order.
func (r *Ranker) Hits() []domain.ChunkHit {
	sort.SliceStable(r.hits, func(i, j int) bool {
		return r.hits[i].Similarity > r.hits[j].Similarity
	})
	if len(r.hits) > r.k {
		r.hits = r.hits[:r.k]
	}
	if r.hits == nil {
		return []domain.ChunkHit{}
	}
	return r.hits
}
