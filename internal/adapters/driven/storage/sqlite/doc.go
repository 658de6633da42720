// Package sqlite provides the SQLite-backed ChunkStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Embeddings are stored as little-endian float32 BLOBs.
//
// # Data Location
//
// By default, the database is stored at ~/.essaycorpus/data/chunks.db
//
// # Search
//
// Nearest scans every embedded row and ranks by cosine similarity. The corpus
// is a few thousand chunks, well within a linear scan.
package sqlite
