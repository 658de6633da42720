// Package snapshot stores the corpus document as a single JSON file.
//
// Writes go to a temp file in the same directory and are renamed into place,
// so a reader never sees a partial snapshot. Loads are strict: each essay and
// chunk is decoded and validated on its own, and a bad record is dropped and
// reported instead of failing the whole document.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
	"github.com/custodia-labs/essaycorpus/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.CorpusStore = (*Store)(nil)

// DefaultFile is the snapshot file name inside the data directory.
const DefaultFile = "corpus.json"

// Store reads and writes the corpus snapshot file.
type Store struct {
	path string
}

// NewStore creates a snapshot store at path.
// If path is empty, defaults to ~/.essaycorpus/data/corpus.json.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".essaycorpus", "data", DefaultFile)
	}
	return &Store{path: path}, nil
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// Save writes the corpus with two-space indentation, replacing any
// previous snapshot atomically.
func (s *Store) Save(ctx context.Context, corpus *domain.Corpus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if corpus == nil {
		return fmt.Errorf("%w: corpus is nil", domain.ErrInvalidInput)
	}

	data, err := json.MarshalIndent(corpus, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding corpus: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".corpus-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	logger.Debug("snapshot written to %s (%d bytes)", s.path, len(data))
	return nil
}

// Load reads the snapshot. The document is rejected when a top-level field
// is missing; malformed essays and chunks are dropped and returned as
// quarantined records. Corpus totals are recomputed from the kept essays.
func (s *Store) Load(ctx context.Context) (*domain.Corpus, []domain.QuarantinedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: no corpus snapshot at %s", domain.ErrNotFound, s.path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading snapshot: %w", err)
	}

	return Decode(data)
}

// Decode parses and validates snapshot bytes.
func Decode(data []byte) (*domain.Corpus, []domain.QuarantinedRecord, error) {
	var raw rawCorpus
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: corpus snapshot: %v", domain.ErrInvalidInput, err)
	}
	if err := raw.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: corpus snapshot: %v", domain.ErrInvalidInput, err)
	}

	var quarantined []domain.QuarantinedRecord
	essays := make([]domain.Essay, 0, len(raw.Essays))

	for i, msg := range raw.Essays {
		essay, bad, err := decodeEssay(i, msg)
		if err != nil {
			quarantined = append(quarantined, domain.QuarantinedRecord{
				EssayIndex: i,
				ChunkIndex: -1,
				Reason:     err.Error(),
			})
			continue
		}
		quarantined = append(quarantined, bad...)
		essays = append(essays, essay)
	}

	for _, q := range quarantined {
		logger.Warn("quarantined essay %d, chunk %d: %s", q.EssayIndex, q.ChunkIndex, q.Reason)
	}

	corpus := domain.NewCorpus(*raw.CurrentDate, *raw.Author, *raw.URL, essays)
	return corpus, quarantined, nil
}

type rawCorpus struct {
	CurrentDate *string           `json:"current_date"`
	Author      *string           `json:"author"`
	URL         *string           `json:"url"`
	Length      *int              `json:"length"`
	Tokens      *int              `json:"tokens"`
	Essays      []json.RawMessage `json:"essays"`
}

// Validate checks that every top-level field is present.
func (c *rawCorpus) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CurrentDate, validation.NotNil),
		validation.Field(&c.Author, validation.NotNil),
		validation.Field(&c.URL, validation.NotNil),
		validation.Field(&c.Length, validation.NotNil),
		validation.Field(&c.Tokens, validation.NotNil),
		validation.Field(&c.Essays, validation.NotNil),
	)
}

type rawEssay struct {
	Title   *string           `json:"title"`
	URL     *string           `json:"url"`
	Date    *string           `json:"date"`
	Thanks  *string           `json:"thanks"`
	Content *string           `json:"content"`
	Length  *int              `json:"length"`
	Tokens  *int              `json:"tokens"`
	Chunks  []json.RawMessage `json:"chunks"`
}

// Validate checks that every essay field is present and the URL is set.
func (e *rawEssay) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.Title, validation.NotNil),
		validation.Field(&e.URL, validation.NotNil, validation.Required),
		validation.Field(&e.Date, validation.NotNil),
		validation.Field(&e.Thanks, validation.NotNil),
		validation.Field(&e.Content, validation.NotNil),
		validation.Field(&e.Length, validation.NotNil),
		validation.Field(&e.Tokens, validation.NotNil),
		validation.Field(&e.Chunks, validation.NotNil),
	)
}

type rawChunk struct {
	EssayTitle    *string         `json:"essay_title"`
	EssayURL      *string         `json:"essay_url"`
	EssayDate     *string         `json:"essay_date"`
	EssayThanks   *string         `json:"essay_thanks"`
	Content       json.RawMessage `json:"content"`
	ContentLength *int            `json:"content_length"`
	ContentTokens *int            `json:"content_tokens"`
	Embedding     []float32       `json:"embedding"`
}

// Validate checks the chunk's metadata and measures. Content is checked
// separately so it can be reported as malformed content.
func (c *rawChunk) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.EssayTitle, validation.NotNil),
		validation.Field(&c.EssayURL, validation.NotNil),
		validation.Field(&c.EssayDate, validation.NotNil),
		validation.Field(&c.EssayThanks, validation.NotNil),
		validation.Field(&c.ContentLength, validation.NotNil),
		validation.Field(&c.ContentTokens, validation.NotNil),
	)
}

func decodeEssay(i int, msg json.RawMessage) (domain.Essay, []domain.QuarantinedRecord, error) {
	var raw rawEssay
	if err := json.Unmarshal(msg, &raw); err != nil {
		return domain.Essay{}, nil, fmt.Errorf("invalid essay: %v", err)
	}
	if err := raw.Validate(); err != nil {
		return domain.Essay{}, nil, fmt.Errorf("invalid essay: %v", err)
	}

	essay := domain.Essay{
		Title:   *raw.Title,
		URL:     *raw.URL,
		Date:    *raw.Date,
		Thanks:  *raw.Thanks,
		Content: *raw.Content,
		Length:  *raw.Length,
		Tokens:  *raw.Tokens,
		Chunks:  make([]domain.Chunk, 0, len(raw.Chunks)),
	}

	var quarantined []domain.QuarantinedRecord
	for j, cm := range raw.Chunks {
		chunk, err := decodeChunk(cm)
		if err != nil {
			quarantined = append(quarantined, domain.QuarantinedRecord{
				EssayIndex: i,
				ChunkIndex: j,
				Reason:     err.Error(),
			})
			continue
		}
		essay.Chunks = append(essay.Chunks, chunk)
	}

	return essay, quarantined, nil
}

func decodeChunk(msg json.RawMessage) (domain.Chunk, error) {
	var raw rawChunk
	if err := json.Unmarshal(msg, &raw); err != nil {
		return domain.Chunk{}, fmt.Errorf("invalid chunk: %v", err)
	}

	content := bytes.TrimSpace(raw.Content)
	if len(content) == 0 || content[0] != '"' {
		return domain.Chunk{}, fmt.Errorf("%s: content is not a string", domain.MalformedChunkContent)
	}
	var text string
	if err := json.Unmarshal(content, &text); err != nil {
		return domain.Chunk{}, fmt.Errorf("%s: %v", domain.MalformedChunkContent, err)
	}

	if err := raw.Validate(); err != nil {
		return domain.Chunk{}, fmt.Errorf("invalid chunk: %v", err)
	}

	embedding := raw.Embedding
	if embedding == nil {
		embedding = []float32{}
	}

	return domain.Chunk{
		EssayTitle:    *raw.EssayTitle,
		EssayURL:      *raw.EssayURL,
		EssayDate:     *raw.EssayDate,
		EssayThanks:   *raw.EssayThanks,
		Content:       text,
		ContentLength: *raw.ContentLength,
		ContentTokens: *raw.ContentTokens,
		Embedding:     embedding,
	}, nil
}
