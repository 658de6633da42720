package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
)

func sampleCorpus() *domain.Corpus {
	return domain.NewCorpus("2026-10-14", "Paul Graham", "https://www.paulgraham.com/articles.html", []domain.Essay{{
		Title:   "How to Do Great Work",
		URL:     "https://www.paulgraham.com/greatwork.html",
		Date:    "July 2023",
		Thanks:  "Thanks to Sam Altman.",
		Content: "If you collected lists of techniques. They would overlap.",
		Length:  57,
		Tokens:  12,
		Chunks: []domain.Chunk{{
			EssayTitle:    "How to Do Great Work",
			EssayURL:      "https://www.paulgraham.com/greatwork.html",
			EssayDate:     "July 2023",
			EssayThanks:   "Thanks to Sam Altman.",
			Content:       "If you collected lists of techniques. They would overlap.",
			ContentLength: 57,
			ContentTokens: 12,
			Embedding:     []float32{},
		}},
	}})
}

func TestNewStore_DefaultPath(t *testing.T) {
	s, err := NewStore("")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(s.Path(), filepath.Join(".essaycorpus", "data", DefaultFile)))
}

func TestStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "corpus.json")
	s, err := NewStore(path)
	require.NoError(t, err)

	want := sampleCorpus()
	require.NoError(t, s.Save(ctx, want))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"current_date\": \"2026-10-14\""), "two-space indentation")
	assert.Contains(t, string(data), `"embedding": []`)

	got, quarantined, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, quarantined)
	assert.Equal(t, want, got)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(filepath.Join(t.TempDir(), "corpus.json"))
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, sampleCorpus()))
	empty := domain.NewCorpus("2026-10-15", "Paul Graham", "u", nil)
	require.NoError(t, s.Save(ctx, empty))

	got, _, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-15", got.CurrentDate)
	assert.Empty(t, got.Essays)
}

func TestStore_SaveNil(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "corpus.json"))
	require.NoError(t, err)
	assert.ErrorIs(t, s.Save(context.Background(), nil), domain.ErrInvalidInput)
}

func TestStore_LoadMissing(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	_, _, err = s.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDecode_RejectsDocument(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"missing author", `{"current_date":"d","url":"u","length":0,"tokens":0,"essays":[]}`},
		{"missing essays", `{"current_date":"d","author":"a","url":"u","length":0,"tokens":0}`},
		{"wrong type", `{"current_date":1,"author":"a","url":"u","length":0,"tokens":0,"essays":[]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tc.data))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

const chunkFields = `"essay_title":"T","essay_url":"u","essay_date":"","essay_thanks":"","content_length":1,"content_tokens":1`

func TestDecode_QuarantinesRecords(t *testing.T) {
	data := `{
  "current_date": "2026-10-14", "author": "Paul Graham", "url": "u", "length": 999, "tokens": 999,
  "essays": [
    {"title":"Good","url":"a","date":"","thanks":"","content":"x","length":1,"tokens":1,"chunks":[
      {` + chunkFields + `,"content":"kept","embedding":[]},
      {` + chunkFields + `,"content":42},
      {` + chunkFields + `},
      {"essay_title":"T","essay_url":"u","essay_date":"","essay_thanks":"","content":"no measures"}
    ]},
    {"title":"No URL","date":"","thanks":"","content":"x","length":1,"tokens":1,"chunks":[]},
    {"title":"Bad length","url":"c","date":"","thanks":"","content":"x","length":"one","tokens":1,"chunks":[]},
    {"title":"Second","url":"d","date":"","thanks":"","content":"yy","length":2,"tokens":1,"chunks":[
      {` + chunkFields + `,"content":"also kept"}
    ]}
  ]
}`

	corpus, quarantined, err := Decode([]byte(data))
	require.NoError(t, err)

	require.Len(t, corpus.Essays, 2)
	assert.Equal(t, "Good", corpus.Essays[0].Title)
	require.Len(t, corpus.Essays[0].Chunks, 1)
	assert.Equal(t, "kept", corpus.Essays[0].Chunks[0].Content)
	assert.Equal(t, "Second", corpus.Essays[1].Title)
	assert.NotNil(t, corpus.Essays[1].Chunks[0].Embedding, "missing embedding decodes as empty")

	// Totals reflect the kept essays only.
	assert.Equal(t, 3, corpus.Length)
	assert.Equal(t, 2, corpus.Tokens)

	require.Len(t, quarantined, 5)
	assert.Equal(t, domain.QuarantinedRecord{EssayIndex: 0, ChunkIndex: 1, Reason: "malformed_chunk_content: content is not a string"}, quarantined[0])
	assert.Equal(t, 2, quarantined[1].ChunkIndex)
	assert.Contains(t, quarantined[1].Reason, string(domain.MalformedChunkContent))
	assert.Equal(t, 3, quarantined[2].ChunkIndex)
	assert.Contains(t, quarantined[2].Reason, "content_length")
	assert.Equal(t, domain.QuarantinedRecord{EssayIndex: 1, ChunkIndex: -1, Reason: quarantined[3].Reason}, quarantined[3])
	assert.Contains(t, quarantined[3].Reason, "url")
	assert.Equal(t, 2, quarantined[4].EssayIndex)
	assert.Equal(t, -1, quarantined[4].ChunkIndex)
}

func TestStore_LoadCancelled(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "corpus.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = s.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
