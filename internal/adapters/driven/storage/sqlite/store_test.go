package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func testRecord(url string, essayIdx, chunkIdx int, embedding []float32) domain.ChunkRecord {
	return domain.ChunkRecord{
		ID:            url + "#" + string(rune('0'+chunkIdx)),
		EssayIndex:    essayIdx,
		ChunkIndex:    chunkIdx,
		EssayTitle:    "Title " + url,
		EssayURL:      url,
		EssayDate:     "May 2020",
		EssayThanks:   "Thanks to Jessica.",
		Content:       "content",
		ContentLength: 7,
		ContentTokens: 1,
		Embedding:     embedding,
		CreatedAt:     time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewStore_ErrorHandling(t *testing.T) {
	// Test with invalid path (should fail to create directory)
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	dbPath := filepath.Join(dir, DatabaseFile)
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	nestedDir := filepath.Join(t.TempDir(), "nested", "path", "to", "db")
	store, err := NewStore(nestedDir)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, nestedDir)
}

func TestNewStore_Migrations(t *testing.T) {
	store := setupTestStore(t)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	var tableExists int
	require.NoError(t, store.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='chunks'",
	).Scan(&tableExists))
	assert.Equal(t, 1, tableExists)
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Save(context.Background(), testRecord("a", 0, 0, []float32{1})))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	n, err := second.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_SaveAndByEssayURL(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.Save(ctx, testRecord("b", 1, 1, []float32{0.5, 0.25})))
	require.NoError(t, store.Save(ctx, testRecord("b", 1, 0, nil)))
	require.NoError(t, store.Save(ctx, testRecord("a", 0, 0, []float32{1, 0})))

	records, err := store.ByEssayURL(ctx, "b")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 0, records[0].ChunkIndex)
	assert.Nil(t, records[0].Embedding)

	r := records[1]
	assert.Equal(t, 1, r.ChunkIndex)
	assert.Equal(t, 1, r.EssayIndex)
	assert.Equal(t, "Title b", r.EssayTitle)
	assert.Equal(t, "May 2020", r.EssayDate)
	assert.Equal(t, "Thanks to Jessica.", r.EssayThanks)
	assert.Equal(t, "content", r.Content)
	assert.Equal(t, 7, r.ContentLength)
	assert.Equal(t, 1, r.ContentTokens)
	assert.Equal(t, []float32{0.5, 0.25}, r.Embedding)
	assert.True(t, r.CreatedAt.Equal(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)))

	none, err := store.ByEssayURL(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_SaveUpserts(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	rec := testRecord("a", 0, 0, []float32{1})
	require.NoError(t, store.Save(ctx, rec))
	rec.Content = "updated"
	require.NoError(t, store.Save(ctx, rec))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := store.ByEssayURL(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "updated", records[0].Content)
}

func TestStore_UniqueEssayChunk(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.Save(ctx, testRecord("a", 0, 0, nil)))
	dup := testRecord("a", 0, 0, nil)
	dup.ID = "other-id"
	err := store.Save(ctx, dup)
	assert.Error(t, err)
}

func TestStore_Nearest(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.Save(ctx, testRecord("a", 0, 0, []float32{1, 0})))
	require.NoError(t, store.Save(ctx, testRecord("a", 0, 1, []float32{0, 1})))
	require.NoError(t, store.Save(ctx, testRecord("b", 1, 0, []float32{0.7, 0.7})))
	require.NoError(t, store.Save(ctx, testRecord("c", 2, 0, nil)))

	hits, err := store.Nearest(ctx, []float32{1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].Record.EssayURL)
	assert.Equal(t, 0, hits[0].Record.ChunkIndex)
	assert.Equal(t, "b", hits[1].Record.EssayURL)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestStore_Close(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.Error(t, store.db.Ping())
}

func TestFloat32Conversion(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4028235e38}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
