// Package domain defines the core business entities for essaycorpus.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Essay: One scraped article with canonical text and chunks
//   - Chunk: A token-bounded slice of an essay, the unit of embedding
//   - Corpus: The snapshot document produced by one scrape run
//   - ChunkRecord: The flat row persisted alongside its embedding
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
