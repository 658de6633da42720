package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
)

func TestStatusCmd_ShowsCorpusAndStore(t *testing.T) {
	m := setupTestProvider(t)
	m.corpus.corpus = testCorpus()
	require.NoError(t, m.chunks.Save(context.Background(), domain.ChunkRecord{ID: "x", EssayURL: "u"}))

	out, err := execute(t, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Path: /tmp/corpus.json")
	assert.Contains(t, out, "Scraped: 2026-10-14")
	assert.Contains(t, out, "Essays: 2")
	assert.Contains(t, out, "Chunks: 3")
	assert.Contains(t, out, "Backend: sqlite")
	assert.Contains(t, out, "Stored chunks: 1")
}

func TestStatusCmd_NotScraped(t *testing.T) {
	m := setupTestProvider(t)
	m.corpus.loadErr = domain.ErrNotFound

	out, err := execute(t, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Not scraped yet")
}

func TestStatusCmd_StoreUnavailable(t *testing.T) {
	m := setupTestProvider(t)
	m.corpus.corpus = testCorpus()
	m.chunksErr = errors.New("server selection timeout")

	out, err := execute(t, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Unavailable: server selection timeout")
}
