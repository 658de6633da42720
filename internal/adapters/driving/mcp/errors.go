// Package mcp serves the essay corpus to AI assistants over the Model
// Context Protocol. It exposes semantic search and per-essay chunk lookup as
// tools, and each essay's chunks as a resource.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
