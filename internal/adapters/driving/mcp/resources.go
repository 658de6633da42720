package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
)

const (
	uriScheme   = "essaycorpus://"
	essayPrefix = uriScheme + "essays/"
)

// EssayURI returns the resource URI for an essay's text.
func EssayURI(essayURL string) string {
	return essayPrefix + url.QueryEscape(essayURL)
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: essayPrefix + "{essayUrl}",
		Name:        "essay-text",
		Description: "Stored text of one essay, reassembled from its chunks",
		MIMEType:    "text/plain",
	}, s.handleEssayResource)
}

// handleEssayResource joins an essay's chunks in order, one per paragraph.
func (s *Server) handleEssayResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	essayURL := extractEssayURL(req.Params.URI)
	if essayURL == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	records, err := s.ports.Search.Chunks(ctx, essayURL)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}

	parts := make([]string, len(records))
	for i, r := range records {
		parts[i] = r.Content
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     strings.Join(parts, "\n\n"),
		}},
	}, nil
}

// extractEssayURL decodes the essay URL from essaycorpus://essays/{essayUrl}.
func extractEssayURL(uri string) string {
	if !strings.HasPrefix(uri, essayPrefix) {
		return ""
	}
	decoded, err := url.QueryUnescape(strings.TrimPrefix(uri, essayPrefix))
	if err != nil {
		return ""
	}
	return decoded
}
