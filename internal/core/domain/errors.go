package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown backend, tokenizer or processor name.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the embedding API rejected a request with 429.
	ErrRateLimited = errors.New("rate limited")

	// Fetch Errors.

	// ErrFetch is matched by every *FetchError.
	ErrFetch = errors.New("fetch failed")

	// ErrDisallowed indicates robots.txt forbids fetching the page.
	ErrDisallowed = errors.New("disallowed by robots.txt")

	// ErrExtractionAnomaly marks an expected page element that was absent.
	// It is only ever logged; extraction degrades to empty fields instead.
	ErrExtractionAnomaly = errors.New("extraction anomaly")
)

// FetchError reports a transport or HTTP failure reaching a page.
type FetchError struct {
	URL string

	// StatusCode is zero when no response was received.
	StatusCode int

	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrFetch) true for any FetchError.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// LoadErrorKind classifies a per-chunk failure in the embedding step.
type LoadErrorKind string

// Per-chunk failure kinds. None of them abort a load.
const (
	EmbeddingCallError    LoadErrorKind = "embedding_call_error"
	PersistenceError      LoadErrorKind = "persistence_error"
	MalformedChunkContent LoadErrorKind = "malformed_chunk_content"
)

// LoadError reports one chunk that could not be embedded or stored.
type LoadError struct {
	Kind       LoadErrorKind
	EssayIndex int
	ChunkIndex int
	Err        error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("%s at essay %d, chunk %d: %v", e.Kind, e.EssayIndex, e.ChunkIndex, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}
