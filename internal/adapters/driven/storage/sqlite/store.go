package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/essaycorpus/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/essaycorpus/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/essaycorpus/internal/core/domain"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ChunkStore = (*Store)(nil)

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "chunks.db"

// Store is a SQLite-backed chunk store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.essaycorpus/data/chunks.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".essaycorpus", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

const selectColumns = `
	SELECT id, essay_index, chunk_index, essay_title, essay_url, essay_date, essay_thanks,
		content, content_length, content_tokens, embedding, created_at
	FROM chunks`

// Save inserts or replaces a chunk record.
func (s *Store) Save(ctx context.Context, r domain.ChunkRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chunks (id, essay_index, chunk_index, essay_title, essay_url, essay_date,
			essay_thanks, content, content_length, content_tokens, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			essay_index = excluded.essay_index,
			chunk_index = excluded.chunk_index,
			essay_title = excluded.essay_title,
			essay_url = excluded.essay_url,
			essay_date = excluded.essay_date,
			essay_thanks = excluded.essay_thanks,
			content = excluded.content,
			content_length = excluded.content_length,
			content_tokens = excluded.content_tokens,
			embedding = excluded.embedding,
			created_at = excluded.created_at
	`, r.ID, r.EssayIndex, r.ChunkIndex, r.EssayTitle, r.EssayURL, r.EssayDate,
		r.EssayThanks, r.Content, r.ContentLength, r.ContentTokens,
		float32SliceToBytes(r.Embedding), r.CreatedAt.UTC())

	if err != nil {
		return fmt.Errorf("saving chunk: %w", err)
	}
	return nil
}

// ByEssayURL returns the records of one essay ordered by chunk index.
func (s *Store) ByEssayURL(ctx context.Context, essayURL string) ([]domain.ChunkRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE essay_url = ? ORDER BY chunk_index`, essayURL)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	records := []domain.ChunkRecord{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return records, nil
}

// Nearest scans all embedded rows and returns the k most similar.
func (s *Store) Nearest(ctx context.Context, query []float32, k int) ([]domain.ChunkHit, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE embedding IS NOT NULL ORDER BY essay_index, chunk_index`)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	ranker := similarity.NewRanker(query, k)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		ranker.Add(r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	return ranker.Hits(), nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// scanRecord reads one row in selectColumns order.
func scanRecord(rows *sql.Rows) (domain.ChunkRecord, error) {
	var r domain.ChunkRecord
	var embedding []byte
	var createdAt sql.NullTime
	if err := rows.Scan(&r.ID, &r.EssayIndex, &r.ChunkIndex, &r.EssayTitle, &r.EssayURL,
		&r.EssayDate, &r.EssayThanks, &r.Content, &r.ContentLength, &r.ContentTokens,
		&embedding, &createdAt); err != nil {
		return domain.ChunkRecord{}, fmt.Errorf("scanning chunk: %w", err)
	}
	r.Embedding = bytesToFloat32Slice(embedding)
	if createdAt.Valid {
		r.CreatedAt = createdAt.Time
	}
	return r, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
