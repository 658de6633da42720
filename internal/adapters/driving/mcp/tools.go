package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
	"github.com/custodia-labs/essaycorpus/internal/core/services"
)

// SearchInput is the input schema for the search_essays tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"what to look for in the essays"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of passages to return (default 5)"`
}

// SearchOutput is the output schema for the search_essays tool.
type SearchOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
}

// ChunksInput is the input schema for the essay_chunks tool.
type ChunksInput struct {
	URL string `json:"url" jsonschema:"the essay URL as returned by search_essays"`
}

// ChunksOutput is the output schema for the essay_chunks tool.
type ChunksOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// ChunkOutput is one passage of an essay.
type ChunkOutput struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Date       string  `json:"date,omitempty"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity,omitempty"`
}

func chunkOutput(r domain.ChunkRecord) ChunkOutput {
	return ChunkOutput{
		Title:      r.EssayTitle,
		URL:        r.EssayURL,
		Date:       r.EssayDate,
		ChunkIndex: r.ChunkIndex,
		Content:    r.Content,
	}
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_essays",
		Description: "Find the essay passages most similar in meaning to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "essay_chunks",
		Description: "Return every stored passage of one essay, in order",
	}, s.handleChunks)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = services.DefaultSearchLimit
	}

	hits, err := s.ports.Search.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]ChunkOutput, len(hits)),
		Count:   len(hits),
	}
	for i, hit := range hits {
		output.Results[i] = chunkOutput(hit.Record)
		output.Results[i].Similarity = hit.Similarity
	}

	return nil, output, nil
}

func (s *Server) handleChunks(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChunksInput,
) (*mcp.CallToolResult, ChunksOutput, error) {
	records, err := s.ports.Search.Chunks(ctx, input.URL)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ChunksOutput{Chunks: []ChunkOutput{}}, nil
	}
	if err != nil {
		return nil, ChunksOutput{}, err
	}

	output := ChunksOutput{
		Chunks: make([]ChunkOutput, len(records)),
		Count:  len(records),
	}
	for i, r := range records {
		output.Chunks[i] = chunkOutput(r)
	}

	return nil, output, nil
}
