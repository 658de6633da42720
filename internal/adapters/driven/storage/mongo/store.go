// Package mongo provides a MongoDB-backed ChunkStore.
// Records are upserted by ID into one collection with a unique
// (essay_url, chunk_index) index; nearest-neighbour search ranks the
// embedded documents client side.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/custodia-labs/essaycorpus/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/essaycorpus/internal/core/domain"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ChunkStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultURI            = "mongodb://localhost:27017"
	DefaultDatabase       = "essaycorpus"
	DefaultCollection     = "chunks"
	DefaultConnectTimeout = 10 * time.Second
)

// Config holds configuration for the MongoDB store.
type Config struct {
	URI        string
	Database   string
	Collection string

	// ConnectTimeout bounds connect, ping and index creation.
	ConnectTimeout time.Duration
}

// Store persists chunk records in a MongoDB collection.
type Store struct {
	client *mongo.Client
	chunks *mongo.Collection
}

// chunkDocument is the BSON shape of a chunk record.
type chunkDocument struct {
	ID            string    `bson:"_id"`
	EssayIndex    int       `bson:"essay_index"`
	ChunkIndex    int       `bson:"chunk_index"`
	EssayTitle    string    `bson:"essay_title"`
	EssayURL      string    `bson:"essay_url"`
	EssayDate     string    `bson:"essay_date"`
	EssayThanks   string    `bson:"essay_thanks"`
	Content       string    `bson:"content"`
	ContentLength int       `bson:"content_length"`
	ContentTokens int       `bson:"content_tokens"`
	Embedding     []float32 `bson:"embedding,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
}

// NewStore connects to MongoDB, verifies the server and ensures indexes.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	cfg = withDefaults(cfg)

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	s := &Store{
		client: client,
		chunks: client.Database(cfg.Database).Collection(cfg.Collection),
	}

	if err := s.createIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return s, nil
}

func withDefaults(cfg Config) Config {
	if cfg.URI == "" {
		cfg.URI = DefaultURI
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	return cfg
}

func (s *Store) createIndexes(ctx context.Context) error {
	_, err := s.chunks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "essay_url", Value: 1}, {Key: "chunk_index", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating essay_url index: %w", err)
	}
	return nil
}

// Save inserts or replaces the record with the same ID.
func (s *Store) Save(ctx context.Context, r domain.ChunkRecord) error {
	doc := toDocument(r)
	opts := options.Replace().SetUpsert(true)
	if _, err := s.chunks.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return fmt.Errorf("saving chunk: %w", err)
	}
	return nil
}

// ByEssayURL returns the records of one essay ordered by chunk index.
func (s *Store) ByEssayURL(ctx context.Context, essayURL string) ([]domain.ChunkRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "chunk_index", Value: 1}})
	cursor, err := s.chunks.Find(ctx, bson.M{"essay_url": essayURL}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []chunkDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding chunks: %w", err)
	}

	records := make([]domain.ChunkRecord, len(docs))
	for i, d := range docs {
		records[i] = fromDocument(d)
	}
	return records, nil
}

// Nearest ranks every embedded document against query.
func (s *Store) Nearest(ctx context.Context, query []float32, k int) ([]domain.ChunkHit, error) {
	filter := bson.M{"embedding.0": bson.M{"$exists": true}}
	opts := options.Find().SetSort(bson.D{{Key: "essay_index", Value: 1}, {Key: "chunk_index", Value: 1}})

	cursor, err := s.chunks.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer cursor.Close(ctx)

	ranker := similarity.NewRanker(query, k)
	for cursor.Next(ctx) {
		var d chunkDocument
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("decoding chunk: %w", err)
		}
		ranker.Add(fromDocument(d))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	return ranker.Hits(), nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.chunks.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return int(n), nil
}

// Get returns one record by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.ChunkRecord, error) {
	var d chunkDocument
	err := s.chunks.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading chunk: %w", err)
	}
	r := fromDocument(d)
	return &r, nil
}

// Close disconnects from the server.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultConnectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toDocument(r domain.ChunkRecord) chunkDocument {
	return chunkDocument{
		ID:            r.ID,
		EssayIndex:    r.EssayIndex,
		ChunkIndex:    r.ChunkIndex,
		EssayTitle:    r.EssayTitle,
		EssayURL:      r.EssayURL,
		EssayDate:     r.EssayDate,
		EssayThanks:   r.EssayThanks,
		Content:       r.Content,
		ContentLength: r.ContentLength,
		ContentTokens: r.ContentTokens,
		Embedding:     r.Embedding,
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

func fromDocument(d chunkDocument) domain.ChunkRecord {
	return domain.ChunkRecord{
		ID:            d.ID,
		EssayIndex:    d.EssayIndex,
		ChunkIndex:    d.ChunkIndex,
		EssayTitle:    d.EssayTitle,
		EssayURL:      d.EssayURL,
		EssayDate:     d.EssayDate,
		EssayThanks:   d.EssayThanks,
		Content:       d.Content,
		ContentLength: d.ContentLength,
		ContentTokens: d.ContentTokens,
		Embedding:     d.Embedding,
		CreatedAt:     d.CreatedAt,
	}
}
