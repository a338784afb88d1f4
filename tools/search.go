package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/stylecache-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchArgs defines the input parameters for the stylecache_search tool.
type SearchArgs struct {
	Query      string `json:"query" jsonschema:"Search query. Plain text for word match, quoted for exact phrase, /regex/ for regular expression"`
	KeyGlob    string `json:"keyGlob,omitempty" jsonschema:"Optional glob over cache keys with ':' as separator (e.g. theme:*)"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of stylesheets to return (default 50)"`
}

// SearchHandler holds the dependencies for the search tool.
type SearchHandler struct {
	CSSIndex *index.CSSIndex
	Logger   *slog.Logger
}

// Handle processes a stylecache_search request.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Query == "" {
		h.Logger.Warn("stylecache_search called with empty query")
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "Error: query parameter is required"}},
			IsError: true,
		}, nil, nil
	}

	results, totalMatches, err := h.CSSIndex.Search(index.SearchOptions{
		Query:      args.Query,
		KeyGlob:    args.KeyGlob,
		MaxResults: args.MaxResults,
	})
	if err != nil {
		h.Logger.Error("stylecache_search failed", "query", args.Query, "error", err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Search error: %v", err)}},
			IsError: true,
		}, nil, nil
	}

	h.Logger.Info("stylecache_search",
		"query", args.Query,
		"keyGlob", args.KeyGlob,
		"stylesheets", len(results),
		"matches", totalMatches,
		"elapsed", time.Since(start),
	)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatSearchResults(results, totalMatches)}},
	}, nil, nil
}
