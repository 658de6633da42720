// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for a scrape run:
//
//   - Fetcher: Retrieves raw HTML for a URL
//   - Extractor: Turns essay HTML into canonical text and metadata
//   - Tokenizer: Counts tokens for chunk budgeting
//   - PostProcessorPipeline: Builds chunks from essay content
//   - CorpusStore: Writes and reads the corpus snapshot
//
// # Embedding Interfaces
//
// These are only needed by the embed and search commands:
//
//   - EmbeddingService: Generates vector embeddings
//   - ChunkStore: Persists chunk records and answers nearest-neighbour queries
//   - Pacer: Spaces consecutive embedding calls
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, normaliser or postprocessor package
package driven
